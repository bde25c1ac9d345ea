package services

import (
	"strings"

	"signal-bot-backend/internal/models"
)

// LossStreakCutoff is the consecutive-loss count at which the engine
// switches to its defensive output.
const LossStreakCutoff = 6

// CautionNote is attached to every signal issued under the cutoff.
const CautionNote = "⚠️ 6 losses in a row — go safe and skip this round."

// ComputeSignal derives a prediction signal from the round period, a
// free-text window of recent outcomes and the caller's current loss
// streak. It is a pure function: no persistence, no randomness, total
// over its input domain.
//
// The recent-outcome scan is a plain case-insensitive substring count,
// so e.g. "red" inside a larger word still counts. That matches the
// behavior users have come to expect from this engine and is kept on
// purpose.
func ComputeSignal(period, recents string, lossStreak int) models.Signal {
	tail := 0
	if period != "" {
		if c := period[len(period)-1]; c >= '0' && c <= '9' {
			tail = int(c - '0')
		}
	}

	r := strings.ToLower(recents)
	bigCount := strings.Count(r, "big")
	smallCount := strings.Count(r, "small")
	greenCount := strings.Count(r, "green")
	redCount := strings.Count(r, "red")

	size := models.SizeSmall
	if tail%2 == 1 || bigCount < smallCount {
		size = models.SizeBig
	}

	color := models.ColorRed
	if tail == 1 || tail == 4 || tail == 7 || greenCount <= redCount {
		color = models.ColorGreen
	}

	digit := floorMod(tail*3+bigCount-smallCount, 10)

	sig := models.Signal{Size: size, Color: color, Digit: digit}

	if lossStreak >= LossStreakCutoff {
		sig.Note = CautionNote
		sig.Size = sig.Size.Opposite()
		sig.Color = models.ColorGreen
		sig.Digit = floorMod(digit+5, 10)
	}

	return sig
}

// floorMod is a Euclidean modulo: the result is in [0,m) even when n is
// negative, unlike Go's truncating % operator.
func floorMod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}
