// Package fold prepares AlphaFold3 fold-input payloads: it resolves MSA
// sources, transplants variant sequences, attaches structural templates
// and drives batches of prediction jobs.
package fold

import (
	"encoding/json"
	"fmt"
	"os"
)

// Input is one fold-input payload as read from an input.json file.
// Fields this tool never touches (ligand entries, bonded atom pairs,
// user CCD definitions) are carried through as raw JSON so a written
// payload stays faithful to what the prediction tool expects.
type Input struct {
	Name            string          `json:"name,omitempty"`
	ModelSeeds      []int           `json:"modelSeeds,omitempty"`
	Sequences       []Entry         `json:"sequences"`
	BondedAtomPairs json.RawMessage `json:"bondedAtomPairs,omitempty"`
	UserCCD         json.RawMessage `json:"userCCD,omitempty"`
	Dialect         string          `json:"dialect,omitempty"`
	Version         *int            `json:"version,omitempty"`
}

// Entry is a single element of the payload's sequences list. Exactly
// one of its fields is set. Only protein entities are interpreted;
// everything else passes through untouched.
type Entry struct {
	Protein *Protein        `json:"protein,omitempty"`
	RNA     json.RawMessage `json:"rna,omitempty"`
	DNA     json.RawMessage `json:"dna,omitempty"`
	Ligand  json.RawMessage `json:"ligand,omitempty"`
}

// Protein is a protein entity within a fold input.
//
// UnpairedMsa, PairedMsa and Templates are pointers so that an absent
// key, an empty value and a populated value are all distinguishable:
// the resolver's classification depends on key presence, not just
// emptiness.
type Protein struct {
	ID            ChainID         `json:"id"`
	Sequence      string          `json:"sequence"`
	Modifications json.RawMessage `json:"modifications,omitempty"`
	UnpairedMsa   *string         `json:"unpairedMsa,omitempty"`
	PairedMsa     *string         `json:"pairedMsa,omitempty"`
	Templates     *[]Template     `json:"templates,omitempty"`

	// MsaPath references an external A3M file to load; it is consumed
	// and stripped during resolution, never written back.
	MsaPath string `json:"msa_path,omitempty"`
}

// Template is one structural template hit: an mmCIF payload plus the
// residue-to-residue correspondence between query and template. The two
// index lists are parallel and equal length, in the order the search
// produced them.
type Template struct {
	Structure       string `json:"mmcif"`
	QueryIndices    []int  `json:"queryIndices"`
	TemplateIndices []int  `json:"templateIndices"`
}

// Ligand is a small-molecule entity appended by the prepare command.
type Ligand struct {
	ID     string `json:"id"`
	Smiles string `json:"smiles"`
}

// ChainID is a protein chain identifier, serialized either as a single
// string ("A") or a list of strings (["A", "B"]). The original shape is
// remembered so the payload round-trips unchanged.
type ChainID struct {
	IDs  []string
	list bool
}

// First returns the first chain identifier, or "" when unset.
func (c ChainID) First() string {
	if len(c.IDs) == 0 {
		return ""
	}
	return c.IDs[0]
}

func (c *ChainID) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		c.IDs = []string{single}
		c.list = false
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("chain id must be a string or list of strings: %s", data)
	}
	c.IDs = many
	c.list = true
	return nil
}

func (c ChainID) MarshalJSON() ([]byte, error) {
	if !c.list && len(c.IDs) == 1 {
		return json.Marshal(c.IDs[0])
	}
	return json.Marshal(c.IDs)
}

// ReadInput parses a fold-input payload from disk.
func ReadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input payload %s: %w", path, err)
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse input payload %s: %w", path, err)
	}
	return &in, nil
}

// Write serializes the payload to disk with the same two space
// indentation the upstream tooling writes.
func (in *Input) Write(path string) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize input payload: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write input payload %s: %w", path, err)
	}
	return nil
}

// Proteins returns every protein entity in the payload, in order.
func (in *Input) Proteins() []*Protein {
	var ps []*Protein
	for i := range in.Sequences {
		if in.Sequences[i].Protein != nil {
			ps = append(ps, in.Sequences[i].Protein)
		}
	}
	return ps
}

// FirstProtein returns the payload's first protein entity, or an error
// when the payload carries none.
func (in *Input) FirstProtein() (*Protein, error) {
	for i := range in.Sequences {
		if in.Sequences[i].Protein != nil {
			return in.Sequences[i].Protein, nil
		}
	}
	return nil, fmt.Errorf("no protein entity found in payload %q", in.Name)
}

// HasLigand reports whether any entry in the payload is a ligand.
func (in *Input) HasLigand() bool {
	for i := range in.Sequences {
		if len(in.Sequences[i].Ligand) > 0 {
			return true
		}
	}
	return false
}

// AddLigand appends a ligand entity to the payload.
func (in *Input) AddLigand(l Ligand) error {
	raw, err := json.Marshal(l)
	if err != nil {
		return err
	}
	in.Sequences = append(in.Sequences, Entry{Ligand: raw})
	return nil
}

// Copy returns a deep copy of the payload. Deriving a variant never
// mutates the wild-type payload it was derived from.
func (in *Input) Copy() *Input {
	out := &Input{
		Name:            in.Name,
		ModelSeeds:      append([]int(nil), in.ModelSeeds...),
		BondedAtomPairs: copyRaw(in.BondedAtomPairs),
		UserCCD:         copyRaw(in.UserCCD),
		Dialect:         in.Dialect,
	}
	if in.Version != nil {
		v := *in.Version
		out.Version = &v
	}
	out.Sequences = make([]Entry, len(in.Sequences))
	for i, e := range in.Sequences {
		out.Sequences[i] = Entry{
			RNA:    copyRaw(e.RNA),
			DNA:    copyRaw(e.DNA),
			Ligand: copyRaw(e.Ligand),
		}
		if e.Protein != nil {
			out.Sequences[i].Protein = e.Protein.copy()
		}
	}
	return out
}

func (p *Protein) copy() *Protein {
	out := &Protein{
		ID: ChainID{
			IDs:  append([]string(nil), p.ID.IDs...),
			list: p.ID.list,
		},
		Sequence:      p.Sequence,
		Modifications: copyRaw(p.Modifications),
		MsaPath:       p.MsaPath,
	}
	if p.UnpairedMsa != nil {
		msa := *p.UnpairedMsa
		out.UnpairedMsa = &msa
	}
	if p.PairedMsa != nil {
		msa := *p.PairedMsa
		out.PairedMsa = &msa
	}
	if p.Templates != nil {
		ts := make([]Template, len(*p.Templates))
		for i, t := range *p.Templates {
			ts[i] = Template{
				Structure:       t.Structure,
				QueryIndices:    append([]int(nil), t.QueryIndices...),
				TemplateIndices: append([]int(nil), t.TemplateIndices...),
			}
		}
		out.Templates = &ts
	}
	return out
}

func copyRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

// hasInlineMsa reports whether the protein carries a non-empty unpaired
// MSA inline.
func (p *Protein) hasInlineMsa() bool {
	return p.UnpairedMsa != nil && *p.UnpairedMsa != ""
}

// hasTemplates reports whether the templates key is present at all,
// even as an empty list.
func (p *Protein) hasTemplates() bool {
	return p.Templates != nil
}
