package engine

import "errors"

// Reason explains why a command was rejected.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonOutOfActions          Reason = "out_of_actions"
	ReasonImpassableDestination Reason = "impassable_destination"
	ReasonNothingToShoreUp      Reason = "nothing_to_shore_up"
	ReasonNoArtifactHere        Reason = "no_artifact_here"
	ReasonInvalidAction         Reason = "invalid_action"
	ReasonGameOver              Reason = "game_over"
	ReasonNotOnHeliport         Reason = "not_on_heliport"
	ReasonArtifactNotCollected  Reason = "artifact_not_collected"
)

var (
	ErrOutOfActions          = errors.New("no actions left this turn")
	ErrImpassableDestination = errors.New("destination is sunk, sea, or occupied")
	ErrNothingToShoreUp      = errors.New("target tile is not flooded")
	ErrNoArtifactHere        = errors.New("no artifact on this tile")
	ErrInvalidAction         = errors.New("invalid action")
	ErrGameOver              = errors.New("game is over")
	ErrNotOnHeliport         = errors.New("adventurer is not on the heliport")
	ErrArtifactNotCollected  = errors.New("artifact has not been collected")
)

var reasonErrors = map[Reason]error{
	ReasonOutOfActions:          ErrOutOfActions,
	ReasonImpassableDestination: ErrImpassableDestination,
	ReasonNothingToShoreUp:      ErrNothingToShoreUp,
	ReasonNoArtifactHere:        ErrNoArtifactHere,
	ReasonInvalidAction:         ErrInvalidAction,
	ReasonGameOver:              ErrGameOver,
	ReasonNotOnHeliport:         ErrNotOnHeliport,
	ReasonArtifactNotCollected:  ErrArtifactNotCollected,
}

// Outcome is the result of a command. A rejected command changed nothing.
type Outcome struct {
	Applied bool   `json:"applied"`
	Reason  Reason `json:"reason,omitempty"`
}

func applied() Outcome { return Outcome{Applied: true} }
func rejected(r Reason) Outcome { return Outcome{Reason: r} }

// Err returns nil for applied commands and the sentinel error for the
// rejection reason otherwise.
func (o Outcome) Err() error {
	if o.Applied {
		return nil
	}
	if err, ok := reasonErrors[o.Reason]; ok {
		return err
	}
	return ErrInvalidAction
}

// Message returns a short human readable description of the outcome.
func (o Outcome) Message() string {
	if o.Applied {
		return "ok"
	}
	return o.Err().Error()
}
