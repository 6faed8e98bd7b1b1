package extract

import (
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/loco/internal/history"
)

// Signature is the canonical text that identifies a repeating event. The
// message is NFC-normalised; with withOrigin the source file's name, minus
// directory and extension, is appended as " [name]" so equal messages from
// different files stay distinct.
func Signature(e history.Event, withOrigin bool) string {
	sig := norm.NFC.String(e.Message)
	if withOrigin {
		sig += " [" + e.Source() + "]"
	}
	return sig
}

// Signatures computes the signature of every event in window.
func Signatures(window []history.Event, withOrigin bool) []string {
	sigs := make([]string, len(window))
	for i, e := range window {
		sigs[i] = Signature(e, withOrigin)
	}
	return sigs
}

// Vocabulary maps signatures that occur at least twice to 1-based IDs
// assigned in ascending lexicographic order. ID 0 is never assigned.
type Vocabulary struct {
	symbols []string
	ids     map[string]int
	unique  int
}

// BuildVocabulary counts sigs and keeps the ones that repeat.
func BuildVocabulary(sigs []string) *Vocabulary {
	counts := make(map[string]int)
	for _, s := range sigs {
		counts[s]++
	}

	v := &Vocabulary{ids: make(map[string]int), unique: len(counts)}
	for s, n := range counts {
		if n > 1 {
			v.symbols = append(v.symbols, s)
		}
	}
	slices.Sort(v.symbols)
	for i, s := range v.symbols {
		v.ids[s] = i + 1
	}
	return v
}

// Len returns the number of symbols.
func (v *Vocabulary) Len() int {
	return len(v.symbols)
}

// Unique returns how many distinct signatures were counted, repeating or not.
func (v *Vocabulary) Unique() int {
	return v.unique
}

// ID returns the symbol for sig, or 0 and false if sig does not repeat.
func (v *Vocabulary) ID(sig string) (int, bool) {
	id, ok := v.ids[sig]
	return id, ok
}

// Signature returns the signature for id, or "" if id is out of range.
func (v *Vocabulary) Signature(id int) string {
	if id < 1 || id > len(v.symbols) {
		return ""
	}
	return v.symbols[id-1]
}

// Symbols returns the signatures ordered by ID.
func (v *Vocabulary) Symbols() []string {
	return slices.Clone(v.symbols)
}
