/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: denylist.go
Description: Denylist of known noise byte sequences. Candidates containing any denylisted
substring are dropped by the miner, which keeps runs of padding or filler bytes from
exploding the search. Matching uses an Aho-Corasick automaton over all entries at once.
*/

package inference

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	aho "github.com/petar-dambovaliev/aho-corasick"
)

// Denylist matches candidate words against a fixed set of noise substrings
type Denylist struct {
	patterns  [][]byte
	automaton aho.AhoCorasick
}

// NewDenylist compiles the given noise substrings
// Empty entries are rejected since they would match every word
func NewDenylist(entries [][]byte) (*Denylist, error) {
	d := &Denylist{}
	if len(entries) == 0 {
		return d, nil
	}

	keys := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if len(e) == 0 {
			return nil, fmt.Errorf("%w: denylist entry %d is empty", core.ErrConfiguration, i)
		}
		if seen[string(e)] {
			continue
		}
		seen[string(e)] = true
		keys = append(keys, string(e))
		d.patterns = append(d.patterns, slices.Clone(e))
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	d.automaton = builder.Build(keys)
	return d, nil
}

// ParseDenylist builds a denylist from textual entries
// An entry is either "hex:" followed by hex digits, or text with Go escapes such as \x00
func ParseDenylist(texts []string) (*Denylist, error) {
	entries := make([][]byte, 0, len(texts))
	for _, text := range texts {
		e, err := ParseBytes(text)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return NewDenylist(entries)
}

// ParseBytes decodes one textual byte sequence
func ParseBytes(text string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(text, "hex:"); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: bad hex entry %q: %v", core.ErrConfiguration, text, err)
		}
		return b, nil
	}
	s, err := strconv.Unquote(`"` + strings.ReplaceAll(text, `"`, `\"`) + `"`)
	if err != nil {
		return nil, fmt.Errorf("%w: bad escaped entry %q: %v", core.ErrConfiguration, text, err)
	}
	return []byte(s), nil
}

// Contains reports whether w contains any denylisted substring
func (d *Denylist) Contains(w []byte) bool {
	if d == nil || len(d.patterns) == 0 {
		return false
	}
	return len(d.automaton.FindAll(string(w))) > 0
}

// Len returns the number of distinct entries
func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	return len(d.patterns)
}

// Patterns returns the entries in insertion order
func (d *Denylist) Patterns() [][]byte {
	if d == nil {
		return nil
	}
	return slices.Clone(d.patterns)
}
