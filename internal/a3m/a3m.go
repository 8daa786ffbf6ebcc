// Package a3m normalizes A3M formatted multiple sequence alignments and
// transplants point-mutant query sequences into existing alignments.
//
// A3M is a FASTA-like alignment format where uppercase letters and '-'
// are aligned columns and lowercase letters are insertions relative to
// the query. The first entry is the query and defines the number of
// aligned columns for every other entry.
package a3m

import (
	"log"
	"strings"

	"github.com/TuftsBCB/seq"
)

// maxInvalidRatio is the fraction of invalid characters, relative to an
// entry's original length, above which the whole entry is rejected.
const maxInvalidRatio = 0.10

// An Alignment is an ordered set of A3M entries. The first entry is the
// query and defines the alignment's column count.
type Alignment struct {
	Entries []seq.Sequence
}

// Query returns the first entry of the alignment.
// Calling Query on an empty alignment will panic.
func (al Alignment) Query() seq.Sequence {
	return al.Entries[0]
}

// Len returns the number of entries in the alignment.
func (al Alignment) Len() int {
	return len(al.Entries)
}

// String serializes the alignment back to A3M text. An empty alignment
// serializes to the empty string, which callers treat as "no usable MSA".
func (al Alignment) String() string {
	if len(al.Entries) == 0 {
		return ""
	}
	entries := make([]string, len(al.Entries))
	for i, s := range al.Entries {
		entries[i] = ">" + s.Name + "\n" + string(residueBytes(s.Residues))
	}
	return strings.Join(entries, "\n")
}

// Copy returns a deep copy of the alignment. Entries share no residue
// storage with the original.
func (al Alignment) Copy() Alignment {
	entries := make([]seq.Sequence, len(al.Entries))
	for i, s := range al.Entries {
		entries[i] = s.Copy()
	}
	return Alignment{Entries: entries}
}

// AlignedLen returns the number of aligned columns in an A3M entry:
// uppercase residues and '-' gaps. Lowercase insertions are excluded.
func AlignedLen(s seq.Sequence) int {
	n := 0
	for _, r := range s.Residues {
		if (r >= 'A' && r <= 'Z') || r == '-' {
			n++
		}
	}
	return n
}

// Parse splits raw A3M text into entries without repairing characters.
// Headers keep only their first whitespace-delimited token; sequence
// lines are concatenated. A header with no sequence lines is dropped.
//
// Parse is for text that is already trusted (an alignment this package
// produced, or one being transplanted verbatim). Use Clean for raw
// files from external search tools.
func Parse(raw string) Alignment {
	var al Alignment
	var name string
	var residues []seq.Residue
	inEntry := false

	flush := func() {
		if inEntry && len(residues) > 0 {
			al.Entries = append(al.Entries, seq.Sequence{
				Name:     name,
				Residues: residues,
			})
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			name = headerToken(line)
			residues = nil
			inEntry = true
			continue
		}
		if !inEntry {
			// sequence text before any header is not an entry
			continue
		}
		residues = append(residues, []seq.Residue(line)...)
	}
	flush()
	return al
}

// Clean parses raw A3M text and normalizes it into a consistent
// alignment. Invalid characters are repaired or dropped, entries with
// too many invalid characters are rejected, and every entry whose
// aligned-column count differs from the query's is filtered out.
//
// The returned alignment may be empty. That is a valid terminal state,
// not an error: it means no usable MSA survived.
func Clean(raw string) Alignment {
	parsed := Parse(raw)

	var al Alignment
	rejected := 0
	invalidTotal := 0
	for _, entry := range parsed.Entries {
		repaired, invalid := repair(entry.Residues)
		invalidTotal += invalid
		if float64(invalid)/float64(len(entry.Residues)) > maxInvalidRatio {
			rejected++
			continue
		}
		if len(repaired) == 0 {
			rejected++
			continue
		}
		al.Entries = append(al.Entries, seq.Sequence{
			Name:     entry.Name,
			Residues: repaired,
		})
	}

	// The first surviving entry is the query and fixes the column count.
	mismatched := 0
	if len(al.Entries) > 0 {
		want := AlignedLen(al.Entries[0])
		kept := al.Entries[:1]
		for _, entry := range al.Entries[1:] {
			if AlignedLen(entry) != want {
				mismatched++
				continue
			}
			kept = append(kept, entry)
		}
		al.Entries = kept
	}

	if invalidTotal > 0 || rejected > 0 || mismatched > 0 {
		log.Printf(
			"cleaned a3m: %d entries kept, %d invalid characters, %d entries rejected, %d length mismatches",
			len(al.Entries), invalidTotal, rejected, mismatched,
		)
	}
	return al
}

// repair replaces or drops invalid characters in a single entry.
// Invalid characters in aligned columns (uppercase or punctuation)
// become '-'; invalid lowercase characters are malformed insertions and
// are dropped. The count of invalid characters encountered is returned
// alongside the repaired residues.
func repair(residues []seq.Residue) ([]seq.Residue, int) {
	repaired := make([]seq.Residue, 0, len(residues))
	invalid := 0
	for _, r := range residues {
		switch {
		case r == '-' || validAmino(r):
			repaired = append(repaired, r)
		case r >= 'a' && r <= 'z':
			// malformed insertion, drop it
			invalid++
		default:
			repaired = append(repaired, '-')
			invalid++
		}
	}
	return repaired, invalid
}

// validAmino reports whether r is one of the twenty amino acid letters,
// upper or lower case.
func validAmino(r seq.Residue) bool {
	switch r {
	case 'A', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'K', 'L',
		'M', 'N', 'P', 'Q', 'R', 'S', 'T', 'V', 'W', 'Y':
		return true
	case 'a', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'k', 'l',
		'm', 'n', 'p', 'q', 'r', 's', 't', 'v', 'w', 'y':
		return true
	}
	return false
}

// headerToken strips the '>' prefix and keeps the first
// whitespace-delimited token of a header line.
func headerToken(line string) string {
	header := strings.TrimSpace(line[1:])
	if i := strings.IndexAny(header, " \t"); i >= 0 {
		header = header[:i]
	}
	return header
}

func residueBytes(residues []seq.Residue) []byte {
	b := make([]byte, len(residues))
	for i, r := range residues {
		b[i] = byte(r)
	}
	return b
}
