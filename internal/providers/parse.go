package providers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var qualifierPattern = regexp.MustCompile(`\s*\(([^)]+)\)\s*$`)

// ParseToPar converts a provider to-par string to a signed integer.
// "E", "-" and the empty string all mean even par.
func ParseToPar(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "E", "-":
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("unparseable to-par value %q", s)
	}
	return n, nil
}

// ParsePosition converts a provider position string ("5", "T5") to a
// numeric position plus a tie marker. Empty and non-numeric values ("CUT",
// "WD") yield position 0.
func ParsePosition(s string) (position int, tied bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "T") {
		tied = true
		s = strings.TrimPrefix(s, "T")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, tied
}

// ParsePositionStatus recognizes the non-numeric position markers golf
// providers use for players out of the running. Unknown strings come back
// empty rather than guessed.
func ParsePositionStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CUT", "MC":
		return "cut"
	case "WD":
		return "wd"
	case "DQ":
		return "dq"
	case "MDF":
		return "mdf"
	}
	return ""
}

// ClassifyThru decodes a "thru" field into exactly one of: a hole count,
// a finished marker, or a tee time meaning the entrant has not started.
func ClassifyThru(s string) Thru {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Thru{State: ThruNotStarted}
	case s == "F" || s == "F*":
		return Thru{State: ThruFinished, Holes: 18}
	case strings.Contains(s, ":"):
		// Clock time with AM/PM: the round has not begun
		return Thru{State: ThruNotStarted, TeeTime: s}
	}
	// Starting-hole annotation ("9*") marks a back-nine start
	n, err := strconv.Atoi(strings.TrimSuffix(s, "*"))
	if err != nil || n <= 0 {
		return Thru{State: ThruNotStarted}
	}
	if n >= 18 {
		return Thru{State: ThruFinished, Holes: 18}
	}
	return Thru{State: ThruPlaying, Holes: n}
}

// CleanName strips a trailing parenthesized qualifier ("(LQ)", "(NT)",
// "(a)") from a display name, returning the clean name and the qualifier.
func CleanName(name string) (clean, qualifier string) {
	m := qualifierPattern.FindStringSubmatch(name)
	if m == nil {
		return strings.TrimSpace(name), ""
	}
	return strings.TrimSpace(qualifierPattern.ReplaceAllString(name, "")), m[1]
}

// IsAmateurQualifier reports whether a name qualifier marks an amateur
func IsAmateurQualifier(q string) bool {
	switch strings.ToLower(q) {
	case "a", "am", "amateur":
		return true
	}
	return false
}

// rawEntry pairs a parsed score with the dedup signals from the wire record
type rawEntry struct {
	score        CanonicalPlayerScore
	hasQualifier bool
	hasData      bool
}

// dedupeEntries collapses duplicate entries for the same clean name. Seen in
// practice when a player appears both with and without a qualifier suffix.
// The entry with position/total data wins; when both have data, the
// qualifier-bearing entry is the more authoritative one. Entries that end
// up with no data at all are dropped rather than defaulted to zero, so a
// withdrawn player never lands at the top of the standings.
func dedupeEntries(entries []rawEntry) []CanonicalPlayerScore {
	index := make(map[string]int, len(entries))
	kept := make([]rawEntry, 0, len(entries))

	for _, e := range entries {
		key := strings.ToLower(e.score.PlayerName)
		i, seen := index[key]
		if !seen {
			index[key] = len(kept)
			kept = append(kept, e)
			continue
		}
		if betterEntry(e, kept[i]) {
			kept[i] = e
		}
	}

	scores := make([]CanonicalPlayerScore, 0, len(kept))
	for _, e := range kept {
		if !e.hasData {
			continue
		}
		scores = append(scores, e.score)
	}
	return scores
}

func betterEntry(candidate, current rawEntry) bool {
	if candidate.hasData != current.hasData {
		return candidate.hasData
	}
	if candidate.hasData && candidate.hasQualifier != current.hasQualifier {
		return candidate.hasQualifier
	}
	return false
}
