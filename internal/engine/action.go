package engine

import "fmt"

// Action is a discrete gameplay command applied to the engine.
type Action int

const (
	ActionNone Action = iota
	ActionMoveLeft
	ActionMoveRight
	ActionMoveDown
	ActionRotateLeft
	ActionRotateRight
)

var actionNames = map[Action]string{
	ActionNone:        "none",
	ActionMoveLeft:    "move_left",
	ActionMoveRight:   "move_right",
	ActionMoveDown:    "move_down",
	ActionRotateLeft:  "rotate_left",
	ActionRotateRight: "rotate_right",
}

// String returns the snake_case name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction converts a name produced by String back into an Action.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
