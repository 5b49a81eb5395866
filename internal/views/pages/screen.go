package pages

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// State is where an entity screen is in its create/edit/delete cycle.
type State int

const (
	Idle State = iota
	FormOpen
	Submitting
	ConfirmingDelete
	Deleting
)

var stateNames = [...]string{"idle", "form-open", "submitting", "confirming-delete", "deleting"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Event moves a Screen between states.
type Event int

const (
	OpenForm Event = iota
	Cancel
	Submit
	// Reject returns a submission with invalid input to the form.
	Reject
	Succeed
	Fail
	RequestDelete
	ConfirmDelete
)

var eventNames = [...]string{"open-form", "cancel", "submit", "reject", "succeed", "fail", "request-delete", "confirm-delete"}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "event(" + strconv.Itoa(int(e)) + ")"
}

var transitions = map[State]map[Event]State{
	Idle:             {OpenForm: FormOpen, RequestDelete: ConfirmingDelete},
	FormOpen:         {Cancel: Idle, Submit: Submitting},
	Submitting:       {Succeed: Idle, Fail: Idle, Reject: FormOpen},
	ConfirmingDelete: {Cancel: Idle, ConfirmDelete: Deleting},
	Deleting:         {Succeed: Idle, Fail: Idle},
}

// ErrInvalidTransition is returned by Apply for events the current state does not accept.
var ErrInvalidTransition = errors.New("invalid screen transition")

// Screen is the page-level state machine shared by the entity pages.
// TargetID names the row being edited or deleted; zero while creating.
type Screen struct {
	State    State
	TargetID int64
}

// Apply performs e or returns ErrInvalidTransition, leaving s unchanged.
func (s *Screen) Apply(e Event) error {
	next, ok := transitions[s.State][e]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s.State)
	}
	s.State = next
	if next == Idle {
		s.TargetID = 0
	}
	return nil
}

// Run applies events in order. If one is rejected, s is left as it was
// before the call and the error is returned.
func (s *Screen) Run(events ...Event) error {
	next := *s
	for _, e := range events {
		if err := next.Apply(e); err != nil {
			return err
		}
	}
	*s = next
	return nil
}

// Editing reports whether the open form edits an existing row.
func (s Screen) Editing() bool {
	return s.State == FormOpen && s.TargetID != 0
}

// ScreenFromQuery derives the screen a GET request asks for:
// ?form=new opens an empty form, ?edit=<id> an edit form and ?delete=<id>
// the delete confirmation. Anything else is Idle.
func ScreenFromQuery(q url.Values) (Screen, error) {
	var (
		s      Screen
		target int64
		event  Event
	)
	switch {
	case q.Get("form") == "new":
		event = OpenForm
	case ParseID(q.Get("edit")) > 0:
		event, target = OpenForm, ParseID(q.Get("edit"))
	case ParseID(q.Get("delete")) > 0:
		event, target = RequestDelete, ParseID(q.Get("delete"))
	default:
		return s, nil
	}
	if err := s.Apply(event); err != nil {
		return Screen{}, err
	}
	s.TargetID = target
	return s, nil
}

// ParseID extracts a positive id, returning zero on failure.
func ParseID(value string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
