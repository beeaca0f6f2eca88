package game

// Roller draws die faces. *rand.Rand from golang.org/x/exp/rand satisfies it.
type Roller interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// Signature is a canonical encoding of a GameState. Two states have the same
// signature iff they are logically equal.
type Signature string
