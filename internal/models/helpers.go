package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateBroadcastID() string {
	return fmt.Sprintf("bcast_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

// ParseOutcome maps the /result argument to a win flag. The second
// return value is false for anything other than win/lose (and a couple
// of common spellings).
func ParseOutcome(arg string) (win bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "win", "won", "w":
		return true, true
	case "lose", "loss", "lost", "l":
		return false, true
	}
	return false, false
}
