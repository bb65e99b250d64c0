package games

import "fmt"

const (
	rouletteMax   = 36
	roulettePicks = 3
)

// SpinRoulette draws one number from [1,36] against the caller's three
// pre-selected numbers. A hit pays 36x gross (net +35*stake).
func SpinRoulette(stake int64, picks []int, rng Rand) (Outcome, error) {
	if len(picks) != roulettePicks {
		return Outcome{}, fmt.Errorf("need exactly %d numbers: %w", roulettePicks, ErrInvalidSelection)
	}

	seen := make(map[int]struct{}, roulettePicks)

	for _, p := range picks {
		if p < 1 || p > rouletteMax {
			return Outcome{}, fmt.Errorf("number %d out of range: %w", p, ErrInvalidSelection)
		}

		_, dup := seen[p]
		if dup {
			return Outcome{}, fmt.Errorf("number %d repeated: %w", p, ErrInvalidSelection)
		}

		seen[p] = struct{}{}
	}

	drawn := rng.IntN(rouletteMax) + 1

	out := Outcome{
		Kind:       KindRoulette,
		Descriptor: fmt.Sprintf("🎲 %d", drawn),
	}

	_, hit := seen[drawn]
	if hit {
		out.Delta = 35 * stake
		out.Win = true
	} else {
		out.Delta = -stake
	}

	return out, nil
}
