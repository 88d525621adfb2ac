package img2ascii

import (
	"fmt"
	"math"
	"strings"
)

// RoundingMode selects how a block brightness is matched to a glyph.
type RoundingMode int

const (
	// RoundNearest picks the glyph with the smallest absolute brightness
	// difference.
	RoundNearest RoundingMode = iota
	// RoundCeiling picks the closest glyph at least as bright as the
	// block, falling back to RoundNearest when none is.
	RoundCeiling
	// RoundFloor picks the closest glyph at most as bright as the block,
	// falling back to RoundNearest when none is.
	RoundFloor
)

// selector picks a glyph from entries sorted by character. Candidates
// only replace the current best when strictly better, so on equal scores
// the smallest character wins.
type selector func(entries []GlyphEntry, brightness float64) rune

var selectors = [...]selector{
	RoundNearest: selectNearest,
	RoundCeiling: selectCeiling,
	RoundFloor:   selectFloor,
}

var roundingNames = [...]string{
	RoundNearest: "nearest",
	RoundCeiling: "ceiling",
	RoundFloor:   "floor",
}

func (m RoundingMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
	return roundingNames[m]
}

// Valid reports whether m is one of the defined modes.
func (m RoundingMode) Valid() bool {
	return m >= RoundNearest && int(m) < len(selectors)
}

// ParseRoundingMode accepts "nearest" (or "abs"), "ceiling" (or "up")
// and "floor" (or "down"), case-insensitively.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "abs", "":
		return RoundNearest, nil
	case "ceiling", "ceil", "up":
		return RoundCeiling, nil
	case "floor", "down":
		return RoundFloor, nil
	}
	return RoundNearest, configError("change rounding method", "unknown rounding mode %q", s)
}

func selectNearest(entries []GlyphEntry, brightness float64) rune {
	best := rune(-1)
	bestDiff := math.Inf(1)
	for _, e := range entries {
		if diff := math.Abs(e.Normalized - brightness); diff < bestDiff {
			best, bestDiff = e.Char, diff
		}
	}
	return best
}

func selectCeiling(entries []GlyphEntry, brightness float64) rune {
	best := rune(-1)
	bestDiff := math.Inf(1)
	for _, e := range entries {
		if e.Normalized < brightness {
			continue
		}
		if diff := e.Normalized - brightness; diff < bestDiff {
			best, bestDiff = e.Char, diff
		}
	}
	if best < 0 {
		return selectNearest(entries, brightness)
	}
	return best
}

func selectFloor(entries []GlyphEntry, brightness float64) rune {
	best := rune(-1)
	bestDiff := math.Inf(1)
	for _, e := range entries {
		if e.Normalized > brightness {
			continue
		}
		if diff := brightness - e.Normalized; diff < bestDiff {
			best, bestDiff = e.Char, diff
		}
	}
	if best < 0 {
		return selectNearest(entries, brightness)
	}
	return best
}
