package profilecard

import (
	"fmt"

	"github.com/go-drift/stateview/pkg/dom"
)

// Handles holds every element the card writes to. Callers build it once from
// their document and hand it to NewCard.
type Handles struct {
	Main        dom.Element
	Image       dom.Element
	Name        dom.Element
	Email       dom.Element
	Location    dom.Element
	Gender      dom.Element
	DOB         dom.Element
	Phone       dom.Element
	Nationality dom.Element
	ID          dom.Element
	Stroke      dom.Element
	History     dom.Container
}

// Field ids in the page.
const (
	IDName         = "name"
	IDEmail        = "email"
	IDLocation     = "location"
	IDGender       = "gender"
	IDDOB          = "DOB"
	IDPhone        = "phone"
	IDNationality  = "nationality"
	IDIdentity     = "id"
	IDHistory      = "history"
	IDProfile      = "profile"
	IDGenderSelect = "gender-select"
	IDGenerate     = "generate"
	IDRetry        = "retry-link"
)

// BindHandles looks up the card's elements in doc.
func BindHandles(doc dom.Node) (*Handles, error) {
	h := &Handles{}

	mains := doc.ElementsByTagName("main")
	if len(mains) == 0 {
		return nil, fmt.Errorf("profilecard: page has no <main>")
	}
	h.Main = mains[0]

	profile, ok := doc.ElementByID(IDProfile)
	if !ok {
		return nil, missing(IDProfile)
	}
	var img dom.Node
	for _, c := range profile.Children() {
		if c.Tag() == "img" {
			img = c
			break
		}
	}
	if !img.Valid() {
		return nil, fmt.Errorf("profilecard: #%s has no <img>", IDProfile)
	}
	h.Image = img

	rects := doc.ElementsByTagName("rect")
	if len(rects) == 0 {
		return nil, fmt.Errorf("profilecard: page has no stroke <rect>")
	}
	h.Stroke = rects[0]

	fields := []struct {
		id  string
		dst *dom.Element
	}{
		{IDName, &h.Name},
		{IDEmail, &h.Email},
		{IDLocation, &h.Location},
		{IDGender, &h.Gender},
		{IDDOB, &h.DOB},
		{IDPhone, &h.Phone},
		{IDNationality, &h.Nationality},
		{IDIdentity, &h.ID},
	}
	for _, f := range fields {
		el, ok := doc.ElementByID(f.id)
		if !ok {
			return nil, missing(f.id)
		}
		*f.dst = el
	}

	history, ok := doc.ElementByID(IDHistory)
	if !ok {
		return nil, missing(IDHistory)
	}
	h.History = history

	return h, nil
}

func missing(id string) error {
	return fmt.Errorf("profilecard: page has no element #%s", id)
}
