package persist

import "encoding/json"

// Codec converts a value to and from the raw string kept in the store.
type Codec[T any] struct {
	Serialize   func(T) (string, error)
	Deserialize func(string) (T, error)
}

// JSONCodec is the default codec.
func JSONCodec[T any]() Codec[T] {
	return Codec[T]{
		Serialize: func(v T) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		Deserialize: func(raw string) (T, error) {
			var v T
			err := json.Unmarshal([]byte(raw), &v)
			return v, err
		},
	}
}

// StringCodec stores strings verbatim.
func StringCodec() Codec[string] {
	return Codec[string]{
		Serialize:   func(v string) (string, error) { return v, nil },
		Deserialize: func(raw string) (string, error) { return raw, nil },
	}
}

func (c Codec[T]) orDefault() Codec[T] {
	if c.Serialize == nil || c.Deserialize == nil {
		return JSONCodec[T]()
	}
	return c
}
