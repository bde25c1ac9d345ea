package models

import "fmt"

type SizeClass string

const (
	SizeBig   SizeClass = "Big"
	SizeSmall SizeClass = "Small"
)

// Opposite flips Big to Small and back.
func (s SizeClass) Opposite() SizeClass {
	if s == SizeBig {
		return SizeSmall
	}
	return SizeBig
}

type ColorClass string

const (
	ColorGreen ColorClass = "Green"
	ColorRed   ColorClass = "Red"
)

// Signal is the engine output for one round. Note is empty unless the
// high-loss-streak policy kicked in.
type Signal struct {
	Size  SizeClass  `json:"size"`
	Color ColorClass `json:"color"`
	Digit int        `json:"digit"`
	Note  string     `json:"note,omitempty"`
}

// Format renders the snapshot string stored as a user's last signal.
func (s Signal) Format() string {
	out := fmt.Sprintf("%s | %s | %d", s.Size, s.Color, s.Digit)
	if s.Note != "" {
		out += " | " + s.Note
	}
	return out
}

// StreakState is the per-user adaptive state kept in redis. At most one
// of WinStreak and LossStreak is non-zero.
type StreakState struct {
	WinStreak  int    `json:"win_streak"`
	LossStreak int    `json:"loss_streak"`
	LastSignal string `json:"last_signal,omitempty"`
}
