package games

import "strings"

var slotSymbols = []string{"🍒", "🍊", "🍋", "🍇", "7️⃣", "💰"}

// SpinSlots draws three symbols uniformly from the six-symbol alphabet.
// Payout table: three alike pays 3x gross (net +2*stake), any two alike
// pays a stake-equal net win, all distinct loses the stake.
func SpinSlots(stake int64, rng Rand) Outcome {
	reel := [3]string{
		slotSymbols[rng.IntN(len(slotSymbols))],
		slotSymbols[rng.IntN(len(slotSymbols))],
		slotSymbols[rng.IntN(len(slotSymbols))],
	}

	out := Outcome{
		Kind:       KindSlot,
		Descriptor: strings.Join(reel[:], " "),
	}

	switch {
	case reel[0] == reel[1] && reel[1] == reel[2]:
		out.Delta = 2 * stake
		out.Win = true
	case reel[0] == reel[1] || reel[1] == reel[2] || reel[0] == reel[2]:
		out.Delta = stake
		out.Win = true
	default:
		out.Delta = -stake
	}

	return out
}
