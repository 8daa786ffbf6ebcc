package fold

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"github.com/charlesxu90/alphafold3/internal/a3m"
)

// inputFileName is the payload file written into each variant directory.
const inputFileName = "input.json"

// LengthMismatchError is returned when a variant sequence cannot be
// transplanted because its length differs from the wild type's. Only
// point mutations are supported; insertions and deletions are not.
type LengthMismatchError struct {
	Variant     string
	VariantLen  int
	WildTypeLen int
}

func (e LengthMismatchError) Error() string {
	return fmt.Sprintf(
		"variant %s length (%d) doesn't match wild-type length (%d): only point mutations are supported",
		e.Variant, e.VariantLen, e.WildTypeLen,
	)
}

// ReadVariants loads variant sequences from a FASTA file.
func ReadVariants(path string) ([]seq.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open variants FASTA %s: %w", path, err)
	}
	defer f.Close()

	seqs, err := fasta.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse variants FASTA %s: %w", path, err)
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no sequences found in variants FASTA %s", path)
	}
	return seqs, nil
}

// DeriveVariant builds a new fold input for a point-mutant variant of
// the wild-type payload. The wild-type payload is deep copied and never
// mutated. The variant's sequence replaces the protein sequence, the
// unpaired MSA's query entry is transplanted to match, and templates
// are kept as-is: structural templates remain valid for point mutants.
//
// The sequence lengths are validated here, before any copying, and a
// LengthMismatchError aborts the whole derivation.
func DeriveVariant(wt *Input, name, sequence string) (*Input, error) {
	wtProtein, err := wt.FirstProtein()
	if err != nil {
		return nil, err
	}
	if len(sequence) != len(wtProtein.Sequence) {
		return nil, LengthMismatchError{
			Variant:     name,
			VariantLen:  len(sequence),
			WildTypeLen: len(wtProtein.Sequence),
		}
	}

	out := wt.Copy()
	out.Name = name

	protein, err := out.FirstProtein()
	if err != nil {
		return nil, err
	}
	protein.Sequence = sequence
	if protein.hasInlineMsa() {
		msa := a3m.TransplantText(*protein.UnpairedMsa, name, sequence)
		protein.UnpairedMsa = &msa
	}
	return out, nil
}

// PrepareOptions are the optional extras applied to every derived
// variant payload.
type PrepareOptions struct {
	// when set, a ligand with this SMILES is appended to payloads that
	// don't already carry one
	LigandSmiles string

	// chain id for the appended ligand
	LigandID string

	// when non-empty, overrides the wild type's model seeds
	ModelSeeds []int
}

// PrepareReport summarizes a prepare run.
type PrepareReport struct {
	Created int
	Skipped int
}

// PrepareVariants writes one directory per variant under outDir, each
// containing an input.json derived from the wild-type payload. Variants
// whose length differs from the wild type are skipped with a warning
// and counted, never written partially.
func PrepareVariants(wt *Input, variants []seq.Sequence, outDir string, opts PrepareOptions) (PrepareReport, error) {
	var report PrepareReport

	wtProtein, err := wt.FirstProtein()
	if err != nil {
		return report, err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return report, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	for _, v := range variants {
		name := v.Name
		sequence := string(v.Residues)

		if len(sequence) != len(wtProtein.Sequence) {
			log.Printf(
				"WARNING: skipping %s, length mismatch (%d vs %d aa)",
				name, len(sequence), len(wtProtein.Sequence),
			)
			report.Skipped++
			continue
		}

		variant, err := DeriveVariant(wt, name, sequence)
		if err != nil {
			return report, err
		}
		if len(opts.ModelSeeds) > 0 {
			variant.ModelSeeds = append([]int(nil), opts.ModelSeeds...)
		}
		if opts.LigandSmiles != "" && !variant.HasLigand() {
			ligandID := opts.LigandID
			if ligandID == "" {
				ligandID = "B"
			}
			if err := variant.AddLigand(Ligand{ID: ligandID, Smiles: opts.LigandSmiles}); err != nil {
				return report, err
			}
		}

		variantDir := filepath.Join(outDir, name)
		if err := os.MkdirAll(variantDir, 0755); err != nil {
			return report, fmt.Errorf("failed to create variant directory %s: %w", variantDir, err)
		}
		if err := variant.Write(filepath.Join(variantDir, inputFileName)); err != nil {
			return report, err
		}
		report.Created++
	}
	return report, nil
}
