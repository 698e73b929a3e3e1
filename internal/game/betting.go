package game

import "fmt"

// Street represents the betting round
type Street int

const (
	PreFlop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"pre_flop", "flop", "turn", "river", "showdown"}[s]
}

// MarshalText serializes streets by name on the wire
func (s Street) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a street name
func (s *Street) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pre_flop":
		*s = PreFlop
	case "flop":
		*s = Flop
	case "turn":
		*s = Turn
	case "river":
		*s = River
	case "showdown":
		*s = Showdown
	default:
		return fmt.Errorf("unknown street %q", text)
	}
	return nil
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise"}[a]
}

// MarshalText serializes actions by name on the wire
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an action name
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction parses an action name as it appears on the wire
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// ValidAction describes one legal action for the seat to act. For raises,
// Min and Max are the total bet the raise must land between; Max is the
// seat's all-in amount.
type ValidAction struct {
	Action Action `json:"action"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
}
