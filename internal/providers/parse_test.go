package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToPar(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"E", 0, false},
		{"+3", 3, false},
		{"-7", -7, false},
		{"", 0, false},
		{"-", 0, false},
		{"+12", 12, false},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseToPar(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input    string
		position int
		tied     bool
	}{
		{"5", 5, false},
		{"T5", 5, true},
		{"1", 1, false},
		{"", 0, false},
		{"CUT", 0, false},
		{"WD", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pos, tied := ParsePosition(tt.input)
			assert.Equal(t, tt.position, pos)
			assert.Equal(t, tt.tied, tied)
		})
	}
}

func TestClassifyThru(t *testing.T) {
	tests := []struct {
		name  string
		input string
		state ThruState
		holes int
	}{
		{"tee time means not started", "1:35 PM", ThruNotStarted, 0},
		{"finished marker", "F", ThruFinished, 18},
		{"finished with asterisk", "F*", ThruFinished, 18},
		{"mid round hole count", "9", ThruPlaying, 9},
		{"back nine start annotation", "9*", ThruPlaying, 9},
		{"eighteen counts as finished", "18", ThruFinished, 18},
		{"empty means not started", "", ThruNotStarted, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thru := ClassifyThru(tt.input)
			assert.Equal(t, tt.state, thru.State)
			assert.Equal(t, tt.holes, thru.Holes)
		})
	}

	t.Run("tee time is preserved", func(t *testing.T) {
		thru := ClassifyThru("1:35 PM")
		assert.Equal(t, "1:35 PM", thru.TeeTime)
	})
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		input     string
		clean     string
		qualifier string
	}{
		{"Cameron Young (LQ)", "Cameron Young", "LQ"},
		{"Jordan Spieth (NT)", "Jordan Spieth", "NT"},
		{"Gordon Sargent (a)", "Gordon Sargent", "a"},
		{"Scottie Scheffler", "Scottie Scheffler", ""},
		{"  Rory McIlroy  ", "Rory McIlroy", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			clean, qualifier := CleanName(tt.input)
			assert.Equal(t, tt.clean, clean)
			assert.Equal(t, tt.qualifier, qualifier)
		})
	}
}

func TestDedupeEntries(t *testing.T) {
	withData := func(name string, total int, qualifier bool) rawEntry {
		return rawEntry{
			score:        CanonicalPlayerScore{PlayerName: name, TotalToPar: total},
			hasQualifier: qualifier,
			hasData:      true,
		}
	}

	t.Run("entry with data wins over empty duplicate", func(t *testing.T) {
		entries := []rawEntry{
			{score: CanonicalPlayerScore{PlayerName: "Cameron Young"}, hasData: false},
			withData("Cameron Young", -4, true),
		}
		scores := dedupeEntries(entries)
		assert.Len(t, scores, 1)
		assert.Equal(t, -4, scores[0].TotalToPar)
	})

	t.Run("qualifier entry wins when both have data", func(t *testing.T) {
		entries := []rawEntry{
			withData("Cameron Young", -2, false),
			withData("Cameron Young", -4, true),
		}
		scores := dedupeEntries(entries)
		assert.Len(t, scores, 1)
		assert.Equal(t, -4, scores[0].TotalToPar)
	})

	t.Run("entries with no data anywhere are dropped", func(t *testing.T) {
		entries := []rawEntry{
			{score: CanonicalPlayerScore{PlayerName: "Withdrawn Player"}, hasData: false},
			withData("Scottie Scheffler", -9, false),
		}
		scores := dedupeEntries(entries)
		assert.Len(t, scores, 1)
		assert.Equal(t, "Scottie Scheffler", scores[0].PlayerName)
	})

	t.Run("distinct players are preserved in order", func(t *testing.T) {
		entries := []rawEntry{
			withData("A", -5, false),
			withData("B", -3, false),
			withData("C", 1, false),
		}
		scores := dedupeEntries(entries)
		assert.Len(t, scores, 3)
		assert.Equal(t, "A", scores[0].PlayerName)
		assert.Equal(t, "C", scores[2].PlayerName)
	})
}

func TestParsePositionStatus(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CUT", "cut"},
		{"cut", "cut"},
		{"MC", "cut"},
		{"WD", "wd"},
		{"DQ", "dq"},
		{"MDF", "mdf"},
		{"T5", ""},
		{"1", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePositionStatus(tt.input), "input %q", tt.input)
	}
}

func TestMadeCut(t *testing.T) {
	for status, want := range map[string]bool{
		"":    true,
		"cut": false,
		"wd":  false,
		"dq":  false,
		"mdf": false,
	} {
		s := CanonicalPlayerScore{Status: status}
		assert.Equal(t, want, s.MadeCut(), "status %q", status)
	}
}

func TestThruString(t *testing.T) {
	assert.Equal(t, "F", Thru{State: ThruFinished, Holes: 18}.String())
	assert.Equal(t, "9", Thru{State: ThruPlaying, Holes: 9}.String())
	assert.Equal(t, "1:35 PM", Thru{State: ThruNotStarted, TeeTime: "1:35 PM"}.String())
	assert.Equal(t, "", Thru{State: ThruNotStarted}.String())
}
