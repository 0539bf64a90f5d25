package randomuser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sverrors "github.com/go-drift/stateview/pkg/errors"
)

// ErrNoResults is wrapped when a payload decodes but carries no profile.
var ErrNoResults = errors.New("randomuser: payload has no results")

// Profile is one result from the API, reduced to the fields the card shows.
type Profile struct {
	Gender string `json:"gender"`
	Name   struct {
		Title string `json:"title"`
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Location struct {
		Street struct {
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"location"`
	Email string `json:"email"`
	DOB   struct {
		Date time.Time `json:"date"`
		Age  int       `json:"age"`
	} `json:"dob"`
	Phone string `json:"phone"`
	ID    struct {
		Name  string  `json:"name"`
		Value *string `json:"value"`
	} `json:"id"`
	Picture struct {
		Large     string `json:"large"`
		Medium    string `json:"medium"`
		Thumbnail string `json:"thumbnail"`
	} `json:"picture"`
	Nat string `json:"nat"`
}

type envelope struct {
	Error   *string   `json:"error"`
	Results []Profile `json:"results"`
}

// Decode parses a raw payload. A malformed payload, or one with no results,
// is a *errors.ViewError of KindDecode. A payload in which the API reports
// an error yields an *errors.UpstreamError.
func Decode(payload []byte) (*Profile, error) {
	const op = "randomuser.Decode"

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &sverrors.ViewError{Op: op, Kind: sverrors.KindDecode, Err: err, Timestamp: time.Now()}
	}
	if env.Error != nil {
		return nil, &sverrors.UpstreamError{Message: *env.Error}
	}
	if len(env.Results) == 0 {
		return nil, &sverrors.ViewError{Op: op, Kind: sverrors.KindDecode, Err: ErrNoResults, Timestamp: time.Now()}
	}
	return &env.Results[0], nil
}

// FullName returns "title first last".
func (p *Profile) FullName() string {
	return strings.Join([]string{p.Name.Title, p.Name.First, p.Name.Last}, " ")
}

// Identity returns "name, value", or "none" when the API has no value for
// the identity document.
func (p *Profile) Identity() string {
	if p.ID.Value == nil {
		return "none"
	}
	return fmt.Sprintf("%s, %s", p.ID.Name, *p.ID.Value)
}

// Birthday returns the date of birth as M/D/YYYY in the local time zone.
func (p *Profile) Birthday() string {
	return p.BirthdayIn(time.Local)
}

// BirthdayIn is Birthday for an explicit location.
func (p *Profile) BirthdayIn(loc *time.Location) string {
	return p.DOB.Date.In(loc).Format("1/2/2006")
}

// Address returns "number, street, city, state, country".
func (p *Profile) Address() string {
	l := p.Location
	return strings.Join([]string{
		strconv.Itoa(l.Street.Number),
		l.Street.Name,
		l.City,
		l.State,
		l.Country,
	}, ", ")
}
