//go:build js && wasm

package profilecard

import (
	"fmt"

	"github.com/go-drift/stateview/pkg/dom"
)

// BindJSHandles looks up the card's elements in the live page.
func BindJSHandles() (*Handles, error) {
	h := &Handles{}
	selectors := []struct {
		selector string
		dst      *dom.Element
	}{
		{"main", &h.Main},
		{"div#" + IDProfile + " > img", &h.Image},
		{"rect", &h.Stroke},
		{"#" + IDName, &h.Name},
		{"#" + IDEmail, &h.Email},
		{"#" + IDLocation, &h.Location},
		{"#" + IDGender, &h.Gender},
		{"#" + IDDOB, &h.DOB},
		{"#" + IDPhone, &h.Phone},
		{"#" + IDNationality, &h.Nationality},
		{"#" + IDIdentity, &h.ID},
	}
	for _, s := range selectors {
		el, ok := dom.QuerySelector(s.selector)
		if !ok {
			return nil, fmt.Errorf("profilecard: page has no %s", s.selector)
		}
		*s.dst = el
	}
	history, ok := dom.ByID(IDHistory)
	if !ok {
		return nil, missing(IDHistory)
	}
	h.History = history
	return h, nil
}
