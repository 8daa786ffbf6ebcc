package fold

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/charlesxu90/alphafold3/internal/a3m"
)

// msaSourceKind enumerates where a protein's unpaired MSA can come
// from, in fixed precedence order.
type msaSourceKind int

const (
	// the payload already carries a non-empty unpaired MSA
	sourceInline msaSourceKind = iota

	// a {chainID}.a3m file inside a configured directory
	sourceChainDir

	// a single configured A3M file, applied to the first protein only
	sourceFile

	// no MSA source available
	sourceNone
)

// msaSource is the resolved origin of one protein's unpaired MSA.
type msaSource struct {
	kind msaSourceKind
	path string
}

// resolveMsaSource picks the MSA source for one protein, checking each
// kind in precedence order and returning the first match. singleUsed
// tells it whether the single-file source was already consumed by an
// earlier chain.
func resolveMsaSource(p *Protein, msaDir, msaFile string, singleUsed bool) msaSource {
	if p.hasInlineMsa() {
		return msaSource{kind: sourceInline}
	}
	if msaDir != "" && p.ID.First() != "" {
		path := filepath.Join(msaDir, p.ID.First()+".a3m")
		if _, err := os.Stat(path); err == nil {
			return msaSource{kind: sourceChainDir, path: path}
		}
	}
	if msaFile != "" && !singleUsed {
		return msaSource{kind: sourceFile, path: msaFile}
	}
	return msaSource{kind: sourceNone}
}

// AttachMsa loads pre-computed A3M files into the payload's protein
// entities. Per protein the sources are tried in order: inline MSA,
// per-chain file in msaDir, then the single msaFile (first protein
// only). Loaded files are cleaned before being attached.
func AttachMsa(in *Input, msaDir, msaFile string) error {
	singleUsed := false
	for _, p := range in.Proteins() {
		src := resolveMsaSource(p, msaDir, msaFile, singleUsed)
		switch src.kind {
		case sourceInline:
			// nothing to do, inline data wins
		case sourceChainDir, sourceFile:
			data, err := os.ReadFile(src.path)
			if err != nil {
				return fmt.Errorf("failed to read A3M file %s: %w", src.path, err)
			}
			msa := a3m.Clean(string(data)).String()
			p.UnpairedMsa = &msa
			log.Printf("loaded unpaired MSA for chain %s from %s", p.ID.First(), src.path)
			if src.kind == sourceFile {
				singleUsed = true
			}
		case sourceNone:
			log.Printf("WARNING: no MSA source for chain %s", p.ID.First())
		}
	}
	return nil
}
