package config

import "testing"

func TestSearchConfig_Ready(t *testing.T) {
	full := SearchConfig{
		Enabled:         true,
		MaxTemplateDate: "2024-09-30",
		SeqresDatabase:  "/db/pdb_seqres.fasta",
		PDBDatabase:     "/db/mmcif",
		HmmsearchBinary: "/usr/bin/hmmsearch",
		HmmbuildBinary:  "/usr/bin/hmmbuild",
	}

	tests := []struct {
		name   string
		mutate func(*SearchConfig)
		want   bool
	}{
		{"fully configured", func(s *SearchConfig) {}, true},
		{"missing date", func(s *SearchConfig) { s.MaxTemplateDate = "" }, false},
		{"bad date format", func(s *SearchConfig) { s.MaxTemplateDate = "09/30/2024" }, false},
		{"missing seqres db", func(s *SearchConfig) { s.SeqresDatabase = "" }, false},
		{"missing pdb db", func(s *SearchConfig) { s.PDBDatabase = "" }, false},
		{"missing hmmsearch", func(s *SearchConfig) { s.HmmsearchBinary = "" }, false},
		{"missing hmmbuild", func(s *SearchConfig) { s.HmmbuildBinary = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := full
			tt.mutate(&s)
			if got := s.Ready(); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchConfig_ExpandDBPath(t *testing.T) {
	s := SearchConfig{DBDir: "/data/af3"}

	tests := []struct {
		in   string
		want string
	}{
		{"${DB_DIR}/pdb_seqres_2022_09_28.fasta", "/data/af3/pdb_seqres_2022_09_28.fasta"},
		{"${DB_DIR}/mmcif_files", "/data/af3/mmcif_files"},
		{"/absolute/path.fasta", "/absolute/path.fasta"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := s.expandDBPath(tt.in); got != tt.want {
			t.Errorf("expandDBPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearchConfig_MaxDate(t *testing.T) {
	s := SearchConfig{MaxTemplateDate: "2021-09-30"}
	d, err := s.MaxDate()
	if err != nil {
		t.Fatalf("MaxDate() error: %v", err)
	}
	if d.Year() != 2021 || d.Month() != 9 || d.Day() != 30 {
		t.Errorf("MaxDate() = %v, want 2021-09-30", d)
	}
}
