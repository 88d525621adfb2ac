package img2ascii

import (
	"errors"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// MinCharacterSetSize is the smallest set a lookup can run on.
const MinCharacterSetSize = 2

// GlyphEntry is one character of a BrightnessTable. Raw is the glyph's
// density and never changes; Normalized is Raw min-max scaled against the
// current set.
type GlyphEntry struct {
	Char       rune
	Raw        float64
	Normalized float64
}

// BrightnessTable maps brightness values to the characters of a set. The
// normalized brightness of the set always spans exactly [0, 1].
type BrightnessTable struct {
	raster  Rasterizer
	entries []GlyphEntry // sorted by Char
	min     float64
	max     float64
	rescans int
}

// ReconcileStats describes what a Reconcile call changed.
type ReconcileStats struct {
	Added   int
	Removed int
	Rescans int
}

// NewBrightnessTable measures every character of set with raster and
// normalizes the result. Sets with fewer than two characters, or whose
// characters all have the same density, are rejected.
func NewBrightnessTable(set CharacterSet, raster Rasterizer) (*BrightnessTable, error) {
	if set.Len() < MinCharacterSetSize {
		return nil, configError("build table", "charset is too small (%d < %d)",
			set.Len(), MinCharacterSetSize)
	}
	t := &BrightnessTable{raster: raster}
	for _, c := range set.Sorted() {
		raw, err := rawDensity(raster, c, "build table")
		if err != nil {
			return nil, err
		}
		t.entries = append(t.entries, GlyphEntry{Char: c, Raw: raw})
	}
	if !t.rescan() {
		return nil, configError("build table", "all characters of %v have the same density", set)
	}
	return t, nil
}

func rawDensity(raster Rasterizer, c rune, op string) (float64, error) {
	g, err := raster.Rasterize(c)
	if err != nil {
		var ice *InvalidCharacterError
		if errors.As(err, &ice) {
			return 0, &InvalidCharacterError{Op: op, Char: ice.Char}
		}
		return 0, err
	}
	return g.Density(), nil
}

// Len returns the number of characters in the table.
func (t *BrightnessTable) Len() int {
	return len(t.entries)
}

// Chars returns the table's characters as a new set.
func (t *BrightnessTable) Chars() CharacterSet {
	s := make(CharacterSet, len(t.entries))
	for _, e := range t.entries {
		s[e.Char] = struct{}{}
	}
	return s
}

// Entries returns a copy of the entries sorted by character.
func (t *BrightnessTable) Entries() []GlyphEntry {
	return slices.Clone(t.entries)
}

// Entry returns the entry for c.
func (t *BrightnessTable) Entry(c rune) (GlyphEntry, bool) {
	i, ok := t.find(c)
	if !ok {
		return GlyphEntry{}, false
	}
	return t.entries[i], true
}

// Extrema returns the smallest and largest raw density in the table.
func (t *BrightnessTable) Extrema() (lo, hi float64) {
	return t.min, t.max
}

// Rescans returns how many times every entry has been renormalized,
// including the initial build.
func (t *BrightnessTable) Rescans() int {
	return t.rescans
}

// Lookup returns the character whose normalized brightness is closest to
// brightness. Ties go to the smallest character.
func (t *BrightnessTable) Lookup(brightness float64) (rune, error) {
	return t.LookupRounded(brightness, RoundNearest)
}

// LookupRounded is Lookup with an explicit rounding mode.
func (t *BrightnessTable) LookupRounded(brightness float64, mode RoundingMode) (rune, error) {
	sel, err := t.selector(mode)
	if err != nil {
		return 0, err
	}
	return sel(t.entries, brightness), nil
}

func (t *BrightnessTable) selector(mode RoundingMode) (selector, error) {
	if len(t.entries) < MinCharacterSetSize {
		return nil, configError("match character", "charset is too small (%d < %d)",
			len(t.entries), MinCharacterSetSize)
	}
	if !mode.Valid() {
		return nil, configError("match character", "unknown rounding mode %v", mode)
	}
	return selectors[mode], nil
}

// Reconcile changes the table to hold exactly the characters of set.
// Additions are applied before removals so the table never drops below
// two characters on the way. Entries whose raw density lies inside the
// current range are added or removed without touching the others; moving
// an extremum renormalizes the whole table.
//
// Reconcile is atomic: if any character cannot be rasterized, the set is
// too small, or the result would be degenerate, the table is unchanged.
func (t *BrightnessTable) Reconcile(set CharacterSet) (ReconcileStats, error) {
	if set.Len() < MinCharacterSetSize {
		return ReconcileStats{}, configError("change charset", "charset is too small (%d < %d)",
			set.Len(), MinCharacterSetSize)
	}
	added, removed := t.Chars().Diff(set)

	// Measure everything up front so a bad character leaves no trace.
	raws := make([]float64, len(added))
	for i, c := range added {
		raw, err := rawDensity(t.raster, c, "add")
		if err != nil {
			return ReconcileStats{}, err
		}
		raws[i] = raw
	}

	saved := t.snapshot()
	for i, c := range added {
		t.insert(c, raws[i])
	}
	for _, c := range removed {
		if err := t.remove(c); err != nil {
			t.restore(saved)
			return ReconcileStats{}, err
		}
	}
	return ReconcileStats{
		Added:   len(added),
		Removed: len(removed),
		Rescans: t.rescans - saved.rescans,
	}, nil
}

// insert adds c with a known raw density. Inside the current range only
// the new entry is normalized; otherwise the range grows and every entry
// is rescanned.
func (t *BrightnessTable) insert(c rune, raw float64) {
	i, found := t.find(c)
	if found {
		return
	}
	t.entries = slices.Insert(t.entries, i, GlyphEntry{Char: c, Raw: raw})
	if raw >= t.min && raw <= t.max {
		t.entries[i].Normalized = t.normalize(raw)
		return
	}
	t.rescan()
}

// remove deletes c. Removing an entry at an extremum recomputes the
// range and rescans if it moved. Removals that would leave fewer than two
// characters, or a range of zero width, are refused.
func (t *BrightnessTable) remove(c rune) error {
	i, found := t.find(c)
	if !found {
		return nil
	}
	if len(t.entries) <= MinCharacterSetSize {
		return configError("remove", "charset would drop below %d characters", MinCharacterSetSize)
	}
	raw := t.entries[i].Raw
	if raw != t.min && raw != t.max {
		t.entries = slices.Delete(t.entries, i, i+1)
		return nil
	}

	rest := slices.Delete(slices.Clone(t.entries), i, i+1)
	lo, hi := extrema(rest)
	if lo == hi {
		return configError("remove", "remaining characters would all have the same density")
	}
	t.entries = rest
	if lo != t.min || hi != t.max {
		t.rescan()
	}
	return nil
}

// rescan recomputes the range and every normalized value. It reports
// false when the range has zero width.
func (t *BrightnessTable) rescan() bool {
	t.min, t.max = extrema(t.entries)
	if t.min == t.max {
		return false
	}
	for i := range t.entries {
		t.entries[i].Normalized = t.normalize(t.entries[i].Raw)
	}
	t.rescans++
	Logger().Debug("rescanned brightness table",
		"chars", len(t.entries), "min", t.min, "max", t.max)
	return true
}

func (t *BrightnessTable) normalize(raw float64) float64 {
	return (raw - t.min) / (t.max - t.min)
}

func (t *BrightnessTable) find(c rune) (int, bool) {
	return slices.BinarySearchFunc(t.entries, c, func(e GlyphEntry, c rune) int {
		return int(e.Char - c)
	})
}

func extrema(entries []GlyphEntry) (lo, hi float64) {
	if len(entries) == 0 {
		return 0, 0
	}
	raws := make([]float64, len(entries))
	for i, e := range entries {
		raws[i] = e.Raw
	}
	return floats.Min(raws), floats.Max(raws)
}

type tableState struct {
	entries  []GlyphEntry
	min, max float64
	rescans  int
}

func (t *BrightnessTable) snapshot() tableState {
	return tableState{
		entries: slices.Clone(t.entries),
		min:     t.min,
		max:     t.max,
		rescans: t.rescans,
	}
}

func (t *BrightnessTable) restore(s tableState) {
	t.entries, t.min, t.max, t.rescans = s.entries, s.min, s.max, s.rescans
}
