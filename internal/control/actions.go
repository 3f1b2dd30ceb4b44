package control

import "github.com/frudas24/gazewaldo/internal/wininput"

// ActionType identifies the kind of input action to execute.
type ActionType string

const (
	// ActMove moves the mouse cursor.
	ActMove ActionType = "move"
)

// Action describes an OS input operation to apply.
type Action struct {
	Type ActionType
	X    int
	Y    int
}

// applyActions executes actions using the injector.
func applyActions(injector wininput.Injector, actions []Action) error {
	for _, action := range actions {
		switch action.Type {
		case ActMove:
			if err := injector.MoveAbs(action.X, action.Y); err != nil {
				return err
			}
		}
	}
	return nil
}
