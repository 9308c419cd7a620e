package checkout

import "fmt"

// State is the checkout step the session is in.
type State int

const (
	Idle State = iota
	PaymentStep
	ContactsStep
	Submitting
	Success
)

var stateNames = map[State]string{
	Idle:         "idle",
	PaymentStep:  "payment",
	ContactsStep: "contacts",
	Submitting:   "submitting",
	Success:      "success",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st, name := range stateNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown checkout state %q", text)
}

// InCheckout reports whether s is one of the form steps.
func (s State) InCheckout() bool {
	return s == PaymentStep || s == ContactsStep
}
