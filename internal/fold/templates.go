package fold

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlesxu90/alphafold3/config"
	"github.com/charlesxu90/alphafold3/internal/a3m"
)

// Fixed post-filter policy for template hits. These mirror the filter
// the upstream data pipeline applies and are deliberately not
// configurable per call.
const (
	// hits that are near-exact subsequences of the query are excluded
	maxSubsequenceRatio = 0.95

	// a hit must align at least this fraction of the query
	minAlignRatio = 0.10

	// a hit must cover at least this many residues
	minHitLength = 10

	// at most this many templates are attached per job
	maxTemplateHits = 4
)

// An IndexPair is one aligned residue-to-residue correspondence between
// the query and a template, both zero indexed.
type IndexPair struct {
	Query    int
	Template int
}

// A Hit is one raw result from the template search collaborator.
type Hit struct {
	// name of the matched seqres entry, eg "1abc_A"
	Name string

	// the hit residues covered by the alignment, gaps removed
	Sequence string

	// release date of the hit structure; zero when unknown
	ReleaseDate time.Time

	// raw mmCIF text of the hit structure, passed through opaquely
	Structure string

	// aligned residue pairs in the order the search produced them
	Mapping []IndexPair
}

// A TemplateSearcher finds structural template hits for a query
// sequence given its multiple sequence alignment.
type TemplateSearcher interface {
	Search(sequence string, al a3m.Alignment) ([]Hit, error)
}

// SearchTemplates runs the collaborator and converts its hits into
// template records, applying the fixed post-filter policy and the
// caller's release-date cutoff. Template search is best effort: any
// collaborator failure is logged and degrades to an empty list, never
// an error.
func SearchTemplates(ts TemplateSearcher, sequence string, al a3m.Alignment, maxDate time.Time) []Template {
	hits, err := ts.Search(sequence, al)
	if err != nil {
		log.Printf("WARNING: template search failed, continuing without templates: %v", err)
		return []Template{}
	}
	return filterHits(hits, sequence, maxDate)
}

// filterHits applies the post-filter policy in hit order: minimum
// length, minimum alignment ratio, near-subsequence exclusion, the
// date cutoff and sequence deduplication, capped at maxTemplateHits.
func filterHits(hits []Hit, query string, maxDate time.Time) []Template {
	templates := []Template{}
	seen := make(map[string]bool)
	for _, h := range hits {
		if len(templates) == maxTemplateHits {
			break
		}
		if len(h.Mapping) < minHitLength {
			continue
		}
		if float64(len(h.Mapping))/float64(len(query)) < minAlignRatio {
			continue
		}
		if nearSubsequence(h.Sequence, query) {
			continue
		}
		if !maxDate.IsZero() && !h.ReleaseDate.IsZero() && h.ReleaseDate.After(maxDate) {
			continue
		}
		if seen[h.Sequence] {
			continue
		}
		seen[h.Sequence] = true
		templates = append(templates, hitTemplate(h))
	}
	return templates
}

// hitTemplate converts a hit's residue mapping into the two parallel
// index lists of a template record, preserving the mapping's order.
func hitTemplate(h Hit) Template {
	t := Template{
		Structure:       h.Structure,
		QueryIndices:    make([]int, len(h.Mapping)),
		TemplateIndices: make([]int, len(h.Mapping)),
	}
	for i, pair := range h.Mapping {
		t.QueryIndices[i] = pair.Query
		t.TemplateIndices[i] = pair.Template
	}
	return t
}

// nearSubsequence reports whether the hit is contained in the query and
// covers more than maxSubsequenceRatio of it. Such hits are close to
// the query itself and carry no independent structural signal.
func nearSubsequence(hit, query string) bool {
	if hit == "" || !strings.Contains(query, hit) {
		return false
	}
	return float64(len(hit))/float64(len(query)) > maxSubsequenceRatio
}

// HmmerSearcher finds template hits by building an HMM profile from the
// query MSA with hmmbuild and searching it against a PDB seqres
// database with hmmsearch. Hit structures are read from a directory of
// mmCIF files and passed through without being parsed.
type HmmerSearcher struct {
	conf config.SearchConfig
}

// NewHmmerSearcher returns a searcher using the configured hmmer
// binaries and databases.
func NewHmmerSearcher(conf config.SearchConfig) *HmmerSearcher {
	return &HmmerSearcher{conf: conf}
}

// hmmerExec is a small utility object for one hmmbuild + hmmsearch
// invocation and its temporary files.
type hmmerExec struct {
	// the query MSA written as aligned FASTA
	in *os.File

	// the profile HMM built from the MSA
	hmm *os.File

	// the Stockholm alignment of hits written by hmmsearch
	out *os.File
}

func newHmmerExec() (*hmmerExec, error) {
	in, err := os.CreateTemp("", "msa-in-*.afa")
	if err != nil {
		return nil, err
	}
	hmm, err := os.CreateTemp("", "msa-profile-*.hmm")
	if err != nil {
		return nil, err
	}
	out, err := os.CreateTemp("", "template-hits-*.sto")
	if err != nil {
		return nil, err
	}
	return &hmmerExec{in: in, hmm: hmm, out: out}, nil
}

// Close removes the temporary files created for the invocation.
func (h *hmmerExec) Close() {
	for _, f := range []*os.File{h.in, h.hmm, h.out} {
		f.Close()
		os.Remove(f.Name())
	}
}

func (s *HmmerSearcher) Search(sequence string, al a3m.Alignment) ([]Hit, error) {
	if al.Len() == 0 {
		return nil, fmt.Errorf("cannot search templates without an MSA")
	}

	h, err := newHmmerExec()
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if _, err := h.in.WriteString(alignedFasta(al)); err != nil {
		return nil, err
	}
	if err := h.in.Close(); err != nil {
		return nil, err
	}

	build := exec.Command(s.conf.HmmbuildBinary, "--amino", h.hmm.Name(), h.in.Name())
	if out, err := build.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("hmmbuild failed: %w: %s", err, out)
	}

	search := exec.Command(
		s.conf.HmmsearchBinary,
		"--noali",
		"-A", h.out.Name(),
		h.hmm.Name(),
		s.conf.SeqresDatabase,
	)
	if out, err := search.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("hmmsearch failed: %w: %s", err, out)
	}

	data, err := os.ReadFile(h.out.Name())
	if err != nil {
		return nil, err
	}
	return s.parseHits(string(data))
}

// alignedFasta projects an A3M alignment onto its match columns,
// dropping lowercase insertions, so hmmbuild sees every entry at the
// query's column count.
func alignedFasta(al a3m.Alignment) string {
	var b strings.Builder
	for _, entry := range al.Entries {
		b.WriteByte('>')
		b.WriteString(entry.Name)
		b.WriteByte('\n')
		for _, r := range entry.Residues {
			if (r >= 'A' && r <= 'Z') || r == '-' {
				b.WriteByte(byte(r))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// stoEntry is one aligned sequence from a Stockholm alignment.
type stoEntry struct {
	name    string
	aligned string
}

// parseStockholm collects the aligned hit sequences and the #=GC RF
// reference line from hmmsearch's -A output. Interleaved blocks are
// concatenated per entry.
func parseStockholm(data string) (rf string, entries []stoEntry) {
	index := make(map[string]int)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "//" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "#=GC RF") {
				rf += strings.TrimSpace(strings.TrimPrefix(line, "#=GC RF"))
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		if i, ok := index[fields[0]]; ok {
			entries[i].aligned += fields[1]
		} else {
			index[fields[0]] = len(entries)
			entries = append(entries, stoEntry{name: fields[0], aligned: fields[1]})
		}
	}
	return rf, entries
}

// parseHits converts the Stockholm alignment into hits with explicit
// query-to-template residue mappings. Query indices come from the RF
// match columns of the profile; template indices count residues from
// the hit's start coordinate in its seqres entry.
func (s *HmmerSearcher) parseHits(data string) ([]Hit, error) {
	rf, entries := parseStockholm(data)
	if rf == "" {
		return nil, fmt.Errorf("hmmsearch output has no #=GC RF reference line")
	}

	var hits []Hit
	for _, entry := range entries {
		name, start := splitHitName(entry.name)
		if len(entry.aligned) != len(rf) {
			log.Printf("skipping hit %s: alignment width %d != reference width %d",
				entry.name, len(entry.aligned), len(rf))
			continue
		}

		hit := Hit{Name: name}
		queryIdx := 0
		templateIdx := start
		for col := 0; col < len(rf); col++ {
			c := entry.aligned[col]
			isResidue := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
			if rf[col] == 'x' {
				if isResidue {
					hit.Mapping = append(hit.Mapping, IndexPair{
						Query:    queryIdx,
						Template: templateIdx,
					})
				}
				queryIdx++
			}
			if isResidue {
				hit.Sequence += string(c &^ 0x20)
				templateIdx++
			}
		}

		structure, date, err := s.loadStructure(name)
		if err != nil {
			log.Printf("WARNING: skipping hit %s: %v", name, err)
			continue
		}
		hit.Structure = structure
		hit.ReleaseDate = date
		hits = append(hits, hit)
	}
	return hits, nil
}

// splitHitName splits a Stockholm entry name like "1abc_A/12-100" into
// the seqres entry name and the zero-indexed start coordinate.
func splitHitName(full string) (name string, start int) {
	name = full
	if i := strings.LastIndex(full, "/"); i >= 0 {
		name = full[:i]
		coords := full[i+1:]
		if j := strings.Index(coords, "-"); j > 0 {
			fmt.Sscanf(coords[:j], "%d", &start)
			if start > 0 {
				start-- // Stockholm coordinates are one indexed
			}
		}
	}
	return name, start
}

// loadStructure reads the mmCIF file for a seqres entry name like
// "1abc_A" from the structure store and extracts its release date.
func (s *HmmerSearcher) loadStructure(name string) (string, time.Time, error) {
	id := name
	if i := strings.Index(id, "_"); i > 0 {
		id = id[:i]
	}
	path := filepath.Join(s.conf.PDBDatabase, strings.ToLower(id)+".cif")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("no structure for %s: %w", name, err)
	}
	return string(data), releaseDate(string(data)), nil
}

// releaseDate scans mmCIF text for the initial deposition date. A zero
// time is returned when the tag is missing; such hits bypass the date
// cutoff rather than being dropped.
func releaseDate(cif string) time.Time {
	const tag = "_pdbx_database_status.recvd_initial_deposition_date"
	for _, line := range strings.Split(cif, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), tag) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if d, err := time.Parse("2006-01-02", fields[len(fields)-1]); err == nil {
			return d
		}
	}
	return time.Time{}
}
