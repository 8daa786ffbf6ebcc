package a3m

import "github.com/TuftsBCB/seq"

// Transplant returns a copy of a wild-type alignment whose query entry
// is replaced by a variant. The variant sequence is used verbatim: no
// re-alignment, no gap insertion or removal. Every other entry passes
// through unchanged, which is safe for point mutants because every
// column keeps its identity.
//
// The caller is responsible for checking that the variant has the same
// length as the full wild-type protein sequence. Transplant itself
// never validates against the alignment's column count.
func Transplant(wildType Alignment, name, sequence string) Alignment {
	variant := seq.Sequence{
		Name:     name,
		Residues: []seq.Residue(sequence),
	}
	if len(wildType.Entries) == 0 {
		return Alignment{Entries: []seq.Sequence{variant}}
	}

	al := wildType.Copy()
	al.Entries[0] = variant
	return al
}

// TransplantText performs Transplant on serialized A3M text, preserving
// every non-query entry. It parses, swaps the query and re-serializes.
func TransplantText(wildTypeMsa, name, sequence string) string {
	return Transplant(Parse(wildTypeMsa), name, sequence).String()
}
