// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SearchConfig is settings for the structural template search that runs
// against a pre-computed MSA.
type SearchConfig struct {
	// whether to run template search at all
	Enabled bool `mapstructure:"enabled"`

	// templates released after this date (YYYY-MM-DD) are excluded
	MaxTemplateDate string `mapstructure:"max-template-date"`

	// root directory substituted for ${DB_DIR} in database paths
	DBDir string `mapstructure:"db-dir"`

	// path to the PDB seqres sequence database searched by hmmsearch
	SeqresDatabase string `mapstructure:"seqres-db"`

	// path to the directory of mmCIF structure files for hits
	PDBDatabase string `mapstructure:"pdb-db"`

	// paths to the hmmer binaries
	HmmsearchBinary string `mapstructure:"hmmsearch"`
	HmmbuildBinary  string `mapstructure:"hmmbuild"`
}

// BatchConfig is settings for scanning and skipping prediction jobs.
type BatchConfig struct {
	// name of the input payload file looked for in each job directory
	InputName string `mapstructure:"input-json-name"`

	// skip a job when its output marker already exists
	SkipExisting bool `mapstructure:"skip-existing"`

	// file name (or suffix, as *_{marker}) that marks a job complete
	OutputMarker string `mapstructure:"output-marker"`
}

// PredictConfig is settings for the external inference command.
type PredictConfig struct {
	// whether to invoke the inference command after resolving inputs
	Enabled bool `mapstructure:"run-inference"`

	// the inference command to execute per job
	Command string `mapstructure:"predict-cmd"`

	// path to the model parameters, passed to the inference command
	ModelDir string `mapstructure:"model-dir"`
}

// Config is the root-level settings struct and is a mix of settings
// available in a config file and those set from the command line.
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Predict PredictConfig `mapstructure:"predict"`
}

// New returns a Config populated by Viper settings.
func New() Config {
	var c Config

	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings into struct: %v", err)
	}

	c.Search.SeqresDatabase = c.Search.expandDBPath(c.Search.SeqresDatabase)
	c.Search.PDBDatabase = c.Search.expandDBPath(c.Search.PDBDatabase)

	return c
}

// expandDBPath substitutes ${DB_DIR} in a database path with the
// configured database root directory.
func (s SearchConfig) expandDBPath(path string) string {
	return strings.ReplaceAll(path, "${DB_DIR}", s.DBDir)
}

// MaxDate parses the configured template date cutoff.
func (s SearchConfig) MaxDate() (time.Time, error) {
	return time.Parse("2006-01-02", s.MaxTemplateDate)
}

// Ready reports whether every setting template search needs is present:
// the date cutoff, both databases and both hmmer binaries. When Ready
// is false the search degrades to an empty template list.
func (s SearchConfig) Ready() bool {
	if _, err := s.MaxDate(); err != nil {
		return false
	}
	return s.SeqresDatabase != "" &&
		s.PDBDatabase != "" &&
		s.HmmsearchBinary != "" &&
		s.HmmbuildBinary != ""
}
