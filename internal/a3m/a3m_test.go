package a3m

import (
	"testing"
)

// entries flattens an alignment to (name, residues) string pairs for
// comparison against expected values.
func entries(al Alignment) [][2]string {
	out := make([][2]string, 0, len(al.Entries))
	for _, s := range al.Entries {
		out = append(out, [2]string{s.Name, string(residueBytes(s.Residues))})
	}
	return out
}

func equalEntries(t *testing.T, got Alignment, want [][2]string) {
	t.Helper()
	g := entries(got)
	if len(g) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(g), len(want), g)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Errorf("entry %d = %v, want %v", i, g[i], want[i])
		}
	}
}

func TestClean_KeepsConsistentEntries(t *testing.T) {
	al := Clean(">q\nMKLL\n>h1\nMK--\n")
	equalEntries(t, al, [][2]string{
		{"q", "MKLL"},
		{"h1", "MK--"},
	})
	if got := AlignedLen(al.Query()); got != 4 {
		t.Errorf("query aligned length = %d, want 4", got)
	}
}

func TestClean_DropsLengthMismatch(t *testing.T) {
	// h2 has five aligned columns against the query's four
	al := Clean(">q\nMKLL\n>h2\nMKLLY\n")
	equalEntries(t, al, [][2]string{
		{"q", "MKLL"},
	})
}

func TestClean_LowercaseInsertionsDoNotCount(t *testing.T) {
	// the lowercase run is an insertion, so h1 still has four columns
	al := Clean(">q\nMKLL\n>h1\nMKklvL-\n")
	equalEntries(t, al, [][2]string{
		{"q", "MKLL"},
		{"h1", "MKklvL-"},
	})
}

func TestClean_RepairsInvalidCharacters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][2]string
	}{
		{
			"invalid uppercase becomes a gap",
			">q\nMKXLMKLLMKL\n>h\nMKLLMKLLMKL\n",
			[][2]string{{"q", "MK-LMKLLMKL"}, {"h", "MKLLMKLLMKL"}},
		},
		{
			"punctuation becomes a gap",
			">q\nMK*LMKLLMKL\n>h\nMKLLMKLLMKL\n",
			[][2]string{{"q", "MK-LMKLLMKL"}, {"h", "MKLLMKLLMKL"}},
		},
		{
			"invalid lowercase is dropped",
			">q\nMKLLMKLLMKL\n>h\nMKLxLMKLLMKL\n",
			[][2]string{{"q", "MKLLMKLLMKL"}, {"h", "MKLLMKLLMKL"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equalEntries(t, Clean(tt.in), tt.want)
		})
	}
}

func TestClean_RejectsMostlyInvalidEntry(t *testing.T) {
	// two invalid characters out of ten is over the 10% bound
	al := Clean(">q\nMKLLMKLLMK\n>bad\nMKXXMKLLMK\n>ok\nMKLLMKLLM-\n")
	equalEntries(t, al, [][2]string{
		{"q", "MKLLMKLLMK"},
		{"ok", "MKLLMKLLM-"},
	})
}

func TestClean_ExactlyTenPercentInvalidKept(t *testing.T) {
	// one invalid character out of ten is not over the bound
	al := Clean(">q\nMKLLMKLLMK\n>h\nMKXLMKLLMK\n")
	equalEntries(t, al, [][2]string{
		{"q", "MKLLMKLLMK"},
		{"h", "MK-LMKLLMK"},
	})
}

func TestClean_HeaderWithoutSequenceDropped(t *testing.T) {
	al := Clean(">q\nMKLL\n>ss_dssp\n>h1\nMK--\n")
	equalEntries(t, al, [][2]string{
		{"q", "MKLL"},
		{"h1", "MK--"},
	})
}

func TestClean_HeaderKeepsFirstTokenOnly(t *testing.T) {
	al := Clean(">tr|Q9X1|Q9X1_HUMAN some description\nMKLL\n")
	equalEntries(t, al, [][2]string{
		{"tr|Q9X1|Q9X1_HUMAN", "MKLL"},
	})
}

func TestClean_MultiLineSequencesConcatenated(t *testing.T) {
	al := Clean(">q\nMK\nLL\n>h1\nMK\n--\n")
	equalEntries(t, al, [][2]string{
		{"q", "MKLL"},
		{"h1", "MK--"},
	})
}

func TestClean_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n\n", ">only_header\n"} {
		al := Clean(in)
		if al.Len() != 0 {
			t.Errorf("Clean(%q) kept %d entries, want 0", in, al.Len())
		}
		if al.String() != "" {
			t.Errorf("Clean(%q).String() = %q, want empty", in, al.String())
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		">q\nMKLL\n>h1\nMK--\n>h2\nMKLLY\n",
		">q some description\nMK*LMKLLMKL\n>h\nMKLxLMKLLMKL\n",
		">q\nMKLL\n>h1\nMKklvL-\n>bad\nXXXX\n",
		"",
	}
	for _, in := range inputs {
		once := Clean(in).String()
		twice := Clean(once).String()
		if once != twice {
			t.Errorf("cleaning not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestClean_AlignedLengthsAllMatchQuery(t *testing.T) {
	raw := ">q\nMKLLVLGLGS\n" +
		">h1\nMKLLVLGLG-\n" +
		">h2\nMKLLVLGlllGS-\n" +
		">h3\nMKLL\n" +
		">h4\nMKLLVLGLGSAA\n"
	al := Clean(raw)
	if al.Len() == 0 {
		t.Fatal("no entries survived")
	}
	want := AlignedLen(al.Query())
	for i, s := range al.Entries {
		if got := AlignedLen(s); got != want {
			t.Errorf("entry %d (%s) aligned length = %d, want %d", i, s.Name, got, want)
		}
	}
}

func TestAlignedLen(t *testing.T) {
	tests := []struct {
		seq  string
		want int
	}{
		{"MKLL", 4},
		{"MK--", 4},
		{"MKklvL-", 4},
		{"mkll", 0},
		{"", 0},
		{"M-k-L", 4},
	}
	for _, tt := range tests {
		s := Parse(">x\n" + tt.seq)
		if s.Len() == 0 {
			if tt.want != 0 {
				t.Errorf("no entry parsed for %q", tt.seq)
			}
			continue
		}
		if got := AlignedLen(s.Query()); got != tt.want {
			t.Errorf("AlignedLen(%q) = %d, want %d", tt.seq, got, tt.want)
		}
	}
}

func TestString_RoundTrip(t *testing.T) {
	raw := ">q\nMKLL\n>h1\nMK--"
	al := Parse(raw)
	if got := al.String(); got != raw {
		t.Errorf("String() = %q, want %q", got, raw)
	}
	again := Parse(al.String())
	equalEntries(t, again, entries(al))
}
