package game

import "fmt"

// ActionType represents the kind of action a player can perform.
type ActionType int

const (
	RollDice ActionType = iota
	SaveDie
	TakeDomino
	EndTurn
)

func (t ActionType) String() string {
	switch t {
	case RollDice:
		return "RollDice"
	case SaveDie:
		return "SaveDie"
	case TakeDomino:
		return "TakeDomino"
	case EndTurn:
		return "EndTurn"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action is one playable move. Only the payload matching Type is set, so two
// actions are equal (==) iff their kind and payload match.
type Action struct {
	Type   ActionType
	Face   int    // SaveDie only
	Domino Domino // TakeDomino only
}

func Roll() Action { return Action{Type: RollDice} }

func Save(face int) Action { return Action{Type: SaveDie, Face: face} }

func Take(d Domino) Action { return Action{Type: TakeDomino, Domino: d} }

func End() Action { return Action{Type: EndTurn} }

func (a Action) String() string {
	switch a.Type {
	case SaveDie:
		return fmt.Sprintf("%s(%d)", a.Type, a.Face)
	case TakeDomino:
		return fmt.Sprintf("%s%s", a.Type, a.Domino)
	default:
		return a.Type.String()
	}
}
