package fold

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const wtPayload = `{
  "name": "subtilisin_wt",
  "modelSeeds": [1234],
  "sequences": [
    {
      "protein": {
        "id": "A",
        "sequence": "MKLLVLGLGS",
        "unpairedMsa": ">wt\nMKLLVLGLGS\n>h1\nMKLLVLGLG-",
        "pairedMsa": "",
        "templates": []
      }
    },
    {
      "ligand": {
        "id": "B",
        "smiles": "CCO"
      }
    }
  ],
  "dialect": "alphafold3",
  "version": 1
}`

func readPayload(t *testing.T, data string) *Input {
	t.Helper()
	var in Input
	if err := json.Unmarshal([]byte(data), &in); err != nil {
		t.Fatalf("failed to parse payload: %v", err)
	}
	return &in
}

func TestInput_RoundTrip(t *testing.T) {
	in := readPayload(t, wtPayload)

	p, err := in.FirstProtein()
	if err != nil {
		t.Fatal(err)
	}
	if p.ID.First() != "A" {
		t.Errorf("chain id = %q, want A", p.ID.First())
	}
	if !p.hasInlineMsa() || !p.hasTemplates() {
		t.Error("inline MSA and templates should both be present")
	}
	if !in.HasLigand() {
		t.Error("ligand entry lost in parsing")
	}

	out, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	again := readPayload(t, string(out))
	out2, err := json.Marshal(again)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != string(out2) {
		t.Errorf("payload changed across a marshal round trip:\n%s\nvs\n%s", out, out2)
	}

	// the single-string chain id must not become a list
	var raw map[string]any
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatal(err)
	}
	seqs := raw["sequences"].([]any)
	protein := seqs[0].(map[string]any)["protein"].(map[string]any)
	if _, isString := protein["id"].(string); !isString {
		t.Errorf("chain id serialized as %T, want string", protein["id"])
	}
}

func TestChainID_ListForm(t *testing.T) {
	var p Protein
	if err := json.Unmarshal([]byte(`{"id": ["A", "B"], "sequence": "MK"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID.First() != "A" || len(p.ID.IDs) != 2 {
		t.Errorf("chain ids = %v, want [A B]", p.ID.IDs)
	}

	out, err := json.Marshal(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `["A","B"]` {
		t.Errorf("list chain id serialized as %s", out)
	}
}

func TestTemplates_PresenceDistinguished(t *testing.T) {
	withKey := readPayload(t, `{"sequences":[{"protein":{"id":"A","sequence":"MK","templates":[]}}]}`)
	withoutKey := readPayload(t, `{"sequences":[{"protein":{"id":"A","sequence":"MK"}}]}`)

	p1, _ := withKey.FirstProtein()
	p2, _ := withoutKey.FirstProtein()
	if !p1.hasTemplates() {
		t.Error("explicit empty templates list read as absent")
	}
	if p2.hasTemplates() {
		t.Error("missing templates key read as present")
	}

	out, _ := json.Marshal(withKey)
	var raw map[string]any
	json.Unmarshal(out, &raw)
	protein := raw["sequences"].([]any)[0].(map[string]any)["protein"].(map[string]any)
	if _, ok := protein["templates"]; !ok {
		t.Error("empty templates list dropped on serialization")
	}
}

func TestInput_CopyIsDeep(t *testing.T) {
	in := readPayload(t, wtPayload)
	cp := in.Copy()

	p, _ := cp.FirstProtein()
	p.Sequence = "XXXXXXXXXX"
	*p.UnpairedMsa = "mutated"
	(*p.Templates) = append(*p.Templates, Template{Structure: "x"})
	cp.ModelSeeds[0] = 9999
	cp.Name = "changed"

	orig, _ := in.FirstProtein()
	if orig.Sequence != "MKLLVLGLGS" {
		t.Error("copy shares protein sequence with original")
	}
	if *orig.UnpairedMsa == "mutated" {
		t.Error("copy shares MSA storage with original")
	}
	if len(*orig.Templates) != 0 {
		t.Error("copy shares template storage with original")
	}
	if in.ModelSeeds[0] != 1234 || in.Name != "subtilisin_wt" {
		t.Error("copy shares scalars or seed storage with original")
	}
}

func TestReadInput_WriteInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	if err := os.WriteFile(path, []byte(wtPayload), 0644); err != nil {
		t.Fatal(err)
	}

	in, err := ReadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.json")
	if err := in.Write(out); err != nil {
		t.Fatal(err)
	}
	again, err := ReadInput(out)
	if err != nil {
		t.Fatal(err)
	}
	b1, _ := json.Marshal(in)
	b2, _ := json.Marshal(again)
	if string(b1) != string(b2) {
		t.Error("payload changed across a write/read round trip")
	}
}

func TestReadInput_Missing(t *testing.T) {
	if _, err := ReadInput(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing payload file")
	}
}
