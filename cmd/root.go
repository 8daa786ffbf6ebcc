// Package cmd is for command line interactions with the af3 batch
// preparation tooling
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "af3",
	Short: `Prepare and batch AlphaFold3 predictions from pre-computed A3M MSAs.
Transplant point-mutant variants into a wild-type alignment, resolve MSA and
template inputs per job, and drive whole directories of predictions`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to happen
// once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// set the shared search and inference flags
func init() {
	log.SetFlags(0)

	pf := RootCmd.PersistentFlags()
	pf.Bool("template-search", false, "search structural templates for inputs that lack them")
	pf.String("max-template-date", "", "exclude templates released after this date (YYYY-MM-DD)")
	pf.String("db-dir", "", "root directory substituted for ${DB_DIR} in database paths")
	pf.String("seqres-db", "${DB_DIR}/pdb_seqres.fasta", "path to the PDB seqres FASTA database")
	pf.String("pdb-db", "${DB_DIR}/mmcif_files", "path to the directory of mmCIF structure files")
	pf.String("hmmsearch", "", "path to the hmmsearch binary")
	pf.String("hmmbuild", "", "path to the hmmbuild binary")
	pf.Bool("run-inference", false, "invoke the inference command after resolving inputs")
	pf.String("predict-cmd", "", "the inference command to execute per job")
	pf.String("model-dir", "", "path to the model parameters")

	viper.BindPFlag("search.enabled", pf.Lookup("template-search"))
	viper.BindPFlag("search.max-template-date", pf.Lookup("max-template-date"))
	viper.BindPFlag("search.db-dir", pf.Lookup("db-dir"))
	viper.BindPFlag("search.seqres-db", pf.Lookup("seqres-db"))
	viper.BindPFlag("search.pdb-db", pf.Lookup("pdb-db"))
	viper.BindPFlag("search.hmmsearch", pf.Lookup("hmmsearch"))
	viper.BindPFlag("search.hmmbuild", pf.Lookup("hmmbuild"))
	viper.BindPFlag("predict.run-inference", pf.Lookup("run-inference"))
	viper.BindPFlag("predict.predict-cmd", pf.Lookup("predict-cmd"))
	viper.BindPFlag("predict.model-dir", pf.Lookup("model-dir"))
}
