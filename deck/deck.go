// deck/deck.go
package deck

import (
	"errors"
	"math/rand"
)

// UniverseSize 卡牌取值范围 [1, 100]
const UniverseSize = 100

// ErrUniverseExhausted is returned when more cards are requested than the
// universe holds; no partial result is ever returned.
var ErrUniverseExhausted = errors.New("deck: not enough cards in universe")

// Allocate draws count pairwise-distinct integers uniformly without
// replacement from [1, UniverseSize].
func Allocate(count int) ([]int, error) {
	return AllocateFrom(count, UniverseSize)
}

// AllocateFrom draws from [1, universeSize]. A shuffled permutation gives a
// uniform without-replacement sample in its prefix.
func AllocateFrom(count, universeSize int) ([]int, error) {
	if count < 0 || count > universeSize {
		return nil, ErrUniverseExhausted
	}

	perm := rand.Perm(universeSize)
	cards := make([]int, count)
	for i := 0; i < count; i++ {
		cards[i] = perm[i] + 1
	}
	return cards, nil
}
