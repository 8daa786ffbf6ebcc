package fold

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/charlesxu90/alphafold3/config"
	"github.com/charlesxu90/alphafold3/internal/a3m"
)

// Mode classifies how one job's payload must be processed. It is a pure
// function of which fields the payload carries, evaluated once per job.
type Mode int

const (
	// the payload has an inline MSA and a templates key: nothing to do
	InlineComplete Mode = iota

	// the payload references an external MSA file that must be loaded,
	// cleaned and optionally searched for templates
	NeedsLoad

	// the payload has an inline MSA but no templates key
	NeedsTemplatesOnly

	// the payload has no MSA source at all
	NoMsa
)

func (m Mode) String() string {
	switch m {
	case InlineComplete:
		return "inline-complete"
	case NeedsLoad:
		return "needs-load"
	case NeedsTemplatesOnly:
		return "needs-templates"
	case NoMsa:
		return "no-msa"
	}
	return "unknown"
}

// Classify determines the processing mode for a payload from field
// presence alone.
func Classify(in *Input) Mode {
	hasInlineMsa := false
	hasTemplates := false
	hasMsaPath := false
	for _, p := range in.Proteins() {
		if p.hasInlineMsa() {
			hasInlineMsa = true
		}
		if p.hasTemplates() {
			hasTemplates = true
		}
		if p.MsaPath != "" {
			hasMsaPath = true
		}
	}

	switch {
	case hasInlineMsa && hasTemplates:
		return InlineComplete
	case hasMsaPath:
		return NeedsLoad
	case hasInlineMsa:
		return NeedsTemplatesOnly
	default:
		return NoMsa
	}
}

// Resolve prepares one job payload in place so the prediction command
// can run on it without its own MSA or template search. jobDir anchors
// relative msa_path references. The searcher may be nil when template
// search is disabled.
//
// Resolve never fails a job for a missing MSA file or a failed template
// search; those degrade to pass-through or empty-list behavior. The
// returned error covers only malformed payloads.
func Resolve(in *Input, jobDir string, conf config.SearchConfig, searcher TemplateSearcher) error {
	mode := Classify(in)
	switch mode {
	case InlineComplete:
		log.Printf("  input has inline MSA and templates, skipping search")
	case NeedsLoad:
		log.Printf("  input has msa_path, loading A3M files")
		loadReferencedMsa(in, jobDir)
		attachTemplates(in, conf, searcher, true)
	case NeedsTemplatesOnly:
		if conf.Enabled {
			log.Printf("  input has inline MSA but no templates, searching templates")
			attachTemplates(in, conf, searcher, false)
		} else {
			log.Printf("  input has inline MSA, no templates, using as is")
		}
	case NoMsa:
		log.Printf("WARNING: no MSA source found in input payload")
	}
	return nil
}

// loadReferencedMsa loads, cleans and inlines each protein's msa_path
// reference. The reference is always stripped, even when the file is
// missing: a missing MSA is a warning and the job proceeds without one.
func loadReferencedMsa(in *Input, jobDir string) {
	for _, p := range in.Proteins() {
		if p.MsaPath == "" {
			continue
		}
		path := p.MsaPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(jobDir, path)
		}
		p.MsaPath = ""

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("WARNING: MSA file not found for chain %s: %v", p.ID.First(), err)
			continue
		}
		msa := a3m.Clean(string(data)).String()
		p.UnpairedMsa = &msa
		if p.PairedMsa == nil {
			empty := ""
			p.PairedMsa = &empty
		}
	}
}

// attachTemplates runs the template search for each protein carrying an
// MSA. When the search is disabled or not fully configured, behavior
// depends on the caller: jobs that loaded an external MSA still get an
// explicit empty templates list (attachEmpty), while inline-MSA jobs
// are left untouched for downstream defaulting.
func attachTemplates(in *Input, conf config.SearchConfig, searcher TemplateSearcher, attachEmpty bool) {
	ready := conf.Enabled && conf.Ready() && searcher != nil

	var maxDate time.Time
	if ready {
		maxDate, _ = conf.MaxDate()
	} else if conf.Enabled {
		log.Printf("WARNING: template search not fully configured, attaching no templates")
	}

	for _, p := range in.Proteins() {
		if !ready {
			if attachEmpty {
				empty := []Template{}
				p.Templates = &empty
			}
			continue
		}
		if !p.hasInlineMsa() {
			if attachEmpty {
				empty := []Template{}
				p.Templates = &empty
			}
			continue
		}
		al := a3m.Parse(*p.UnpairedMsa)
		templates := SearchTemplates(searcher, p.Sequence, al, maxDate)
		p.Templates = &templates
		log.Printf("  attached %d templates for chain %s", len(templates), p.ID.First())
	}
}
