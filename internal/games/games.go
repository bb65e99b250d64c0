// Package games holds the pure game resolvers. A resolver turns a stake
// and a randomness source into an outcome; it never touches storage.
package games

import "errors"

var ErrInvalidSelection = errors.New("invalid number selection")

type Kind string

const (
	KindSlot     Kind = "slot"
	KindRoulette Kind = "roulette"
)

// Rand is the injected randomness source. *math/rand/v2.Rand satisfies
// it; tests pass a scripted source.
type Rand interface {
	IntN(n int) int
}

// Outcome is ephemeral: it exists only between a resolver and the
// settlement that applies its Delta.
type Outcome struct {
	Kind       Kind
	Descriptor string
	Delta      int64
	Win        bool
}
