package profilecard

// ViewState is the state of the card's <main> element. The implementations
// are Loading, Failed and Loaded; no other package can add one.
type ViewState interface {
	viewState()
}

// Loading is shown while a fetch is in flight.
type Loading struct{}

// Failed is shown when a fetch or its payload failed.
type Failed struct {
	Err error
}

// Loaded carries a fetched payload. Picture, when set, replaces the
// payload's picture URL (e.g. an embedded data URI).
type Loaded struct {
	Payload []byte
	Picture string
}

func (Loading) viewState() {}
func (Failed) viewState()  {}
func (Loaded) viewState()  {}

// Visitor handles each ViewState variant.
type Visitor interface {
	VisitLoading(Loading)
	VisitFailed(Failed)
	VisitLoaded(Loaded)
}

// Match calls the Visitor method for s. It reports false for a nil state.
func Match(s ViewState, v Visitor) bool {
	switch s := s.(type) {
	case Loading:
		v.VisitLoading(s)
	case Failed:
		v.VisitFailed(s)
	case Loaded:
		v.VisitLoaded(s)
	default:
		return false
	}
	return true
}

// Class names carried by <main>, one per state.
const (
	ClassLoading = "loading"
	ClassError   = "error"
	ClassSuccess = "load-success"
)

// Name returns the class name for s, or "" for a nil state.
func Name(s ViewState) string {
	switch s.(type) {
	case Loading:
		return ClassLoading
	case Failed:
		return ClassError
	case Loaded:
		return ClassSuccess
	}
	return ""
}
