// Package profilecard binds a random identity card page to a
// StatefulElement.
//
// The card's <main> element holds a ViewState. Every write runs the card's
// listener, which swaps the view classes, animates the card stroke and fills
// the profile fields. Successful loads are also appended to a history list
// built from a ModularTemplate.
//
// A Card must only be used from the UI thread (see package dispatch).
package profilecard

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/go-drift/stateview/internal/randomuser"
	"github.com/go-drift/stateview/pkg/core"
	"github.com/go-drift/stateview/pkg/dispatch"
	"github.com/go-drift/stateview/pkg/dom"
	sverrors "github.com/go-drift/stateview/pkg/errors"
)

const (
	// DefaultMicrointeraction is the delay between a successful load and the
	// card stroke being drawn in.
	DefaultMicrointeraction = 200 * time.Millisecond

	// StrokeHidden and StrokeDrawn are the stroke-dashoffset values of the
	// card border while loading and after a load.
	StrokeHidden = "1870"
	StrokeDrawn  = "0"

	// HistoryTag is the class carried by every history entry.
	HistoryTag = "history-item"

	// ClassCurrent marks the history entry for the profile on display.
	ClassCurrent = "current"
)

// ErrNoDispatcher is reported when a fetch result cannot be handed back to
// the UI thread.
var ErrNoDispatcher = errors.New("profilecard: no UI dispatcher registered")

// Fetcher returns the raw payload for one random profile.
type Fetcher interface {
	Fetch(ctx context.Context, gender randomuser.Gender) ([]byte, error)
}

// PictureResolver turns a picture URL into the value used for the image src.
type PictureResolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// Clock schedules the stroke micro-interaction.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// HistoryEntry is one successful load shown in the history list.
type HistoryEntry struct {
	Name        string
	Email       string
	Nationality string
	At          time.Time
}

// Card drives the card page.
type Card struct {
	handles  *Handles
	fetcher  Fetcher
	avatars  PictureResolver
	clock    Clock
	delay    time.Duration
	location *time.Location
	registry *core.Registry

	main    *core.StatefulElement[ViewState]
	history *core.ModularTemplate[HistoryEntry, bool]

	observers []func(ViewState)
	depth     int

	strokeStop func() bool
	strokeSeq  int
}

// Option configures a Card.
type Option func(*Card)

// WithRegistry sets the registry holding the card's back-references.
func WithRegistry(r *core.Registry) Option {
	return func(c *Card) { c.registry = r }
}

// WithClock sets the clock used for the stroke micro-interaction.
func WithClock(clock Clock) Option {
	return func(c *Card) { c.clock = clock }
}

// WithMicrointeraction sets the stroke delay.
func WithMicrointeraction(d time.Duration) Option {
	return func(c *Card) { c.delay = d }
}

// WithAvatars resolves every loaded picture through r before display.
func WithAvatars(r PictureResolver) Option {
	return func(c *Card) { c.avatars = r }
}

// WithLocation sets the time zone used for dates of birth.
func WithLocation(loc *time.Location) Option {
	return func(c *Card) { c.location = loc }
}

// NewCard wraps handles.Main in a StatefulElement in the Loading state and
// prepares the history template. No fetch is started; call Generate.
func NewCard(handles *Handles, fetcher Fetcher, opts ...Option) *Card {
	c := &Card{
		handles:  handles,
		fetcher:  fetcher,
		clock:    realClock{},
		delay:    DefaultMicrointeraction,
		location: time.Local,
		registry: core.DefaultRegistry,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.history = core.NewModularTemplate[HistoryEntry, bool](
		HistoryTag,
		handles.History,
		nil,
		renderHistoryEntry,
		markCurrent,
		core.WithRegistry(c.registry),
	)
	c.main = core.NewStatefulElement[ViewState](handles.Main, Loading{}, c.listen, core.WithRegistry(c.registry))
	return c
}

// State returns the current ViewState.
func (c *Card) State() ViewState {
	return c.main.State()
}

// Element returns the wrapped <main> element.
func (c *Card) Element() *core.StatefulElement[ViewState] {
	return c.main
}

// History returns the history template.
func (c *Card) History() *core.ModularTemplate[HistoryEntry, bool] {
	return c.history
}

// SetState writes s to the card.
func (c *Card) SetState(s ViewState) {
	c.main.SetState(s)
}

// OnChange registers fn to run after every state write has been rendered,
// including writes made by the listener itself. fn sees the settled state.
func (c *Card) OnChange(fn func(ViewState)) {
	c.observers = append(c.observers, fn)
}

// Generate shows the loading view and fetches a new profile in the
// background. The result is written back on the UI thread. Overlapping calls
// are not cancelled; whichever response arrives last is displayed.
func (c *Card) Generate(ctx context.Context, gender randomuser.Gender) {
	c.main.SetState(Loading{})
	go func() {
		next := c.load(ctx, gender)
		if !dispatch.Dispatch(func() { c.main.SetState(next) }) {
			sverrors.Report(&sverrors.ViewError{
				Op:        "profilecard.Generate",
				Kind:      sverrors.KindListener,
				Err:       ErrNoDispatcher,
				Element:   dom.Describe(c.handles.Main),
				Timestamp: time.Now(),
			})
		}
	}()
}

// load runs off the UI thread and must not touch the document.
func (c *Card) load(ctx context.Context, gender randomuser.Gender) ViewState {
	payload, err := c.fetcher.Fetch(ctx, gender)
	if err != nil {
		return Failed{Err: err}
	}
	loaded := Loaded{Payload: payload}
	if c.avatars == nil {
		return loaded
	}
	// Payload errors are left to the listener; only a usable picture URL is
	// resolved here.
	if p, err := randomuser.Decode(payload); err == nil && p.Picture.Large != "" {
		if uri, err := c.avatars.Resolve(ctx, p.Picture.Large); err == nil {
			loaded.Picture = uri
		}
	}
	return loaded
}

// FlushMicrointeraction draws the stroke now if it is still owed: its timer
// is pending, or has fired but the draw has not reached the UI thread yet.
func (c *Card) FlushMicrointeraction() {
	if c.strokeStop == nil {
		return
	}
	c.strokeStop()
	c.drawStroke(c.strokeSeq)
}

// Close stops the pending stroke timer and releases the card's
// back-references.
func (c *Card) Close() {
	c.cancelStroke()
	for _, child := range c.history.Children() {
		child.Release()
	}
	c.main.Release()
}

func (c *Card) listen(s ViewState, el dom.Element) {
	c.depth++
	defer func() {
		c.depth--
		if c.depth == 0 && c.main != nil {
			c.notify()
		}
	}()

	el.RemoveClass(ClassError, ClassSuccess, ClassLoading)
	if name := Name(s); name != "" {
		el.AddClass(name)
	}

	if !Match(s, &render{card: c, el: el}) {
		sverrors.Report(&sverrors.ViewError{
			Op:        "profilecard.listen",
			Kind:      sverrors.KindListener,
			Err:       fmt.Errorf("invalid state %T", s),
			Element:   dom.Describe(el),
			Timestamp: time.Now(),
		})
	}
}

func (c *Card) notify() {
	s := c.main.State()
	for _, fn := range c.observers {
		fn(s)
	}
}

// render applies one state to the page.
type render struct {
	card *Card
	el   dom.Element
}

func (r *render) VisitLoading(Loading) {
	r.card.cancelStroke()
	r.card.handles.Stroke.SetStyle("stroke-dashoffset", StrokeHidden)
}

func (r *render) VisitFailed(Failed) {
	r.card.cancelStroke()
}

func (r *render) VisitLoaded(s Loaded) {
	c := r.card
	profile, err := randomuser.Decode(s.Payload)
	if err != nil {
		c.main.SetState(Failed{Err: err})
		return
	}
	c.scheduleStroke()
	c.fill(profile, s.Picture)
	c.appendHistory(profile)
}

func (c *Card) fill(p *randomuser.Profile, picture string) {
	h := c.handles
	h.Gender.SetText(p.Gender)
	h.Name.SetText(p.FullName())
	h.Email.SetText(p.Email)
	h.Nationality.SetText(p.Nat)
	h.Phone.SetText(p.Phone)
	h.ID.SetText(p.Identity())
	h.DOB.SetText(p.BirthdayIn(c.location))
	h.Location.SetText(p.Address())

	if picture == "" {
		picture = p.Picture.Large
	}
	h.Image.SetAttr("src", picture)
	h.Image.SetAttr("alt", p.FullName())
}

func (c *Card) appendHistory(p *randomuser.Profile) {
	if prev, ok := c.history.Latest(); ok {
		if entry, ok := core.LookupState[bool](c.registry, prev); ok {
			entry.SetState(false)
		}
	}
	entry := HistoryEntry{
		Name:        p.FullName(),
		Email:       p.Email,
		Nationality: p.Nat,
		At:          c.clock.Now(),
	}
	if _, err := c.history.Insert(entry, true); err != nil {
		sverrors.Report(&sverrors.ViewError{
			Op:        "profilecard.appendHistory",
			Kind:      sverrors.KindTemplate,
			Err:       err,
			Element:   dom.Describe(c.handles.History),
			Timestamp: time.Now(),
		})
	}
}

func (c *Card) scheduleStroke() {
	c.cancelStroke()
	c.strokeSeq++
	seq := c.strokeSeq
	c.strokeStop = c.clock.AfterFunc(c.delay, func() {
		dispatch.Dispatch(func() { c.drawStroke(seq) })
	})
}

// drawStroke runs on the UI thread; a timer superseded by a newer state is
// ignored.
func (c *Card) drawStroke(seq int) {
	if seq != c.strokeSeq {
		return
	}
	c.strokeStop = nil
	c.handles.Stroke.SetStyle("stroke-dashoffset", StrokeDrawn)
}

func (c *Card) cancelStroke() {
	c.strokeSeq++
	if c.strokeStop != nil {
		c.strokeStop()
		c.strokeStop = nil
	}
}

func renderHistoryEntry(e HistoryEntry) string {
	return fmt.Sprintf(
		`<li %s data-at="%s"><span class="history-name">%s</span> <span class="history-email">%s</span> <span class="history-nat">%s</span></li>`,
		core.Placeholder,
		e.At.UTC().Format(time.RFC3339),
		html.EscapeString(e.Name),
		html.EscapeString(e.Email),
		html.EscapeString(e.Nationality),
	)
}

func markCurrent(current bool, el dom.Element) {
	if current {
		el.AddClass(ClassCurrent)
	} else {
		el.RemoveClass(ClassCurrent)
	}
}
