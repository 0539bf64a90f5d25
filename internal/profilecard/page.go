package profilecard

import (
	_ "embed"

	"github.com/go-drift/stateview/pkg/dom"
)

//go:embed page.html
var page string

// Page returns the card page markup.
func Page() string {
	return page
}

// NewDocument parses a fresh copy of the card page.
func NewDocument() (dom.Node, error) {
	return dom.ParseString(page)
}
