package models_test

import (
	"strings"
	"testing"

	"signal-bot-backend/internal/models"
)

func TestSignalFormat(t *testing.T) {
	sig := models.Signal{Size: models.SizeBig, Color: models.ColorGreen, Digit: 7}
	if got := sig.Format(); got != "Big | Green | 7" {
		t.Errorf("Unexpected format %q", got)
	}

	sig.Note = "caution"
	if got := sig.Format(); !strings.HasSuffix(got, "| caution") {
		t.Errorf("Note should be appended, got %q", got)
	}
}

func TestSizeClassOpposite(t *testing.T) {
	if models.SizeBig.Opposite() != models.SizeSmall {
		t.Error("Big should flip to Small")
	}
	if models.SizeSmall.Opposite() != models.SizeBig {
		t.Error("Small should flip to Big")
	}
}

func TestParseOutcome(t *testing.T) {
	cases := []struct {
		arg string
		win bool
		ok  bool
	}{
		{"win", true, true},
		{"WIN", true, true},
		{" lose ", false, true},
		{"loss", false, true},
		{"draw", false, false},
		{"", false, false},
	}

	for _, c := range cases {
		win, ok := models.ParseOutcome(c.arg)
		if win != c.win || ok != c.ok {
			t.Errorf("ParseOutcome(%q) = (%v,%v), want (%v,%v)", c.arg, win, ok, c.win, c.ok)
		}
	}
}

func TestGenerateBroadcastID(t *testing.T) {
	id := models.GenerateBroadcastID()
	if id == "" || !strings.HasPrefix(id, "bcast_") {
		t.Errorf("Unexpected broadcast id %q", id)
	}
	if id == models.GenerateBroadcastID() {
		t.Error("Broadcast ids should not repeat")
	}
}
