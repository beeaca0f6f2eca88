package game

import "fmt"

// Domino is a scoring tile. Its worm value is derived from the face value.
type Domino struct {
	Face  int
	Worms int
}

// NewDomino returns the domino for the given face value.
func NewDomino(face int) Domino {
	return Domino{Face: face, Worms: (face - 17) / 4}
}

func (d Domino) String() string {
	return fmt.Sprintf("(%d,%d)", d.Face, d.Worms)
}
