package model

type Attack struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Damage int    `json:"damage"`
}

type Attacks struct {
	Special []Attack `json:"special"`
}

// Pokemon is the payload returned by the lookup source and shown by the data view.
type Pokemon struct {
	ID        string  `json:"id"`
	Number    string  `json:"number"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Attacks   Attacks `json:"attacks"`
	FetchedAt string  `json:"fetchedAt,omitempty"`
}
