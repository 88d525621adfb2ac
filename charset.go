package img2ascii

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// CharacterSet is an unordered set of distinct characters.
type CharacterSet map[rune]struct{}

// DefaultCharacterSet is the set a new session starts with.
const DefaultCharacterSet = "0123456789"

// Character spec keywords accepted by EditCharacterSet.
const (
	SpecAll   = "all"
	SpecSpace = "space"
)

// NewCharacterSet builds a set from chars, dropping duplicates.
func NewCharacterSet(chars ...rune) CharacterSet {
	s := make(CharacterSet, len(chars))
	for _, c := range chars {
		s[c] = struct{}{}
	}
	return s
}

// CharacterSetFromString builds a set from the characters of str.
func CharacterSetFromString(str string) CharacterSet {
	return NewCharacterSet([]rune(str)...)
}

// PrintableASCII returns a set of every printable ASCII character.
func PrintableASCII() CharacterSet {
	s := make(CharacterSet, LastPrintable-FirstPrintable+1)
	for c := FirstPrintable; c <= LastPrintable; c++ {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts chars into the set.
func (s CharacterSet) Add(chars ...rune) {
	for _, c := range chars {
		s[c] = struct{}{}
	}
}

// Remove deletes chars from the set.
func (s CharacterSet) Remove(chars ...rune) {
	for _, c := range chars {
		delete(s, c)
	}
}

// Contains reports whether c is in the set.
func (s CharacterSet) Contains(c rune) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of characters in the set.
func (s CharacterSet) Len() int {
	return len(s)
}

// Sorted returns the characters in increasing code point order.
func (s CharacterSet) Sorted() []rune {
	out := make([]rune, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of the set.
func (s CharacterSet) Clone() CharacterSet {
	out := make(CharacterSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same characters.
func (s CharacterSet) Equal(other CharacterSet) bool {
	if len(s) != len(other) {
		return false
	}
	for c := range s {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}

// Diff returns the characters that are in next but not in s (added) and
// those in s but not in next (removed), both sorted.
func (s CharacterSet) Diff(next CharacterSet) (added, removed []rune) {
	for c := range next {
		if !s.Contains(c) {
			added = append(added, c)
		}
	}
	for c := range s {
		if !next.Contains(c) {
			removed = append(removed, c)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

// String lists the characters in increasing order, e.g. "[0, 1, 2]".
func (s CharacterSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range s.Sorted() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteRune(c)
	}
	sb.WriteByte(']')
	return sb.String()
}

// SetOp is an edit applied to a CharacterSet.
type SetOp string

const (
	OpAdd    SetOp = "add"
	OpRemove SetOp = "remove"
)

// EditCharacterSet adds or removes the characters described by spec:
//
//	a single printable character   "x"
//	the space character            "space"
//	all printable ASCII            "all"
//	an inclusive range, any order  "a-z", "z-a"
//
// Every character named must be printable ASCII. On error s is left
// unchanged.
func EditCharacterSet(s CharacterSet, op SetOp, spec string) error {
	if op != OpAdd && op != OpRemove {
		return &InvalidCharacterError{Op: string(op), Spec: spec}
	}
	chars, err := parseCharacterSpec(op, spec)
	if err != nil {
		return err
	}
	if op == OpAdd {
		s.Add(chars...)
	} else {
		s.Remove(chars...)
	}
	return nil
}

func parseCharacterSpec(op SetOp, spec string) ([]rune, error) {
	switch {
	case spec == SpecSpace:
		return []rune{' '}, nil
	case spec == SpecAll:
		return charRange(FirstPrintable, LastPrintable), nil
	case utf8.RuneCountInString(spec) == 1:
		c, _ := utf8.DecodeRuneInString(spec)
		if !IsPrintable(c) {
			return nil, &InvalidCharacterError{Op: string(op), Char: c}
		}
		return []rune{c}, nil
	case utf8.RuneCountInString(spec) == 3 && []rune(spec)[1] == '-':
		bounds := []rune(spec)
		from, to := bounds[0], bounds[2]
		for _, c := range []rune{from, to} {
			if !IsPrintable(c) {
				return nil, &InvalidCharacterError{Op: string(op), Char: c}
			}
		}
		return charRange(min(from, to), max(from, to)), nil
	}
	return nil, &InvalidCharacterError{Op: string(op), Spec: spec}
}

func charRange(from, to rune) []rune {
	out := make([]rune, 0, to-from+1)
	for c := from; c <= to; c++ {
		out = append(out, c)
	}
	return out
}
