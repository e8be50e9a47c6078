// Package view holds the render output of the app's components. Views are
// plain data; turning them into markup is the client's job.
package view

import (
	"fmt"

	"pokeinfo/statehub/internal/model"
)

type Kind string

const (
	KindPlaceholder Kind = "placeholder"
	KindLoading     Kind = "loading"
	KindData        Kind = "data"
	KindFallback    Kind = "fallback"
	KindGreeting    Kind = "greeting"
)

// Action is something the client can trigger from a view.
type Action struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

type View struct {
	Kind    Kind           `json:"kind"`
	Text    string         `json:"text,omitempty"`
	Name    string         `json:"name,omitempty"`
	Pokemon *model.Pokemon `json:"pokemon,omitempty"`
	Error   string         `json:"error,omitempty"`
	Actions []Action       `json:"actions,omitempty"`
}

func Placeholder(text string) View {
	return View{Kind: KindPlaceholder, Text: text}
}

// Loading is shown while a lookup for name is in flight.
func Loading(name string) View {
	return View{Kind: KindLoading, Name: name, Text: "Loading..."}
}

func Data(p model.Pokemon) View {
	return View{Kind: KindData, Name: p.Name, Pokemon: &p}
}

// Fallback is what an error boundary shows in place of its subtree.
func Fallback(err error, retry Action) View {
	return View{
		Kind:    KindFallback,
		Text:    "There was an error:",
		Error:   err.Error(),
		Actions: []Action{retry},
	}
}

func Greeting(name string) View {
	if name == "" {
		return View{Kind: KindGreeting, Text: "Please type your name"}
	}
	return View{Kind: KindGreeting, Name: name, Text: fmt.Sprintf("Hello %s", name)}
}
