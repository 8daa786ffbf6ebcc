package cmd

import (
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/charlesxu90/alphafold3/config"
	"github.com/charlesxu90/alphafold3/internal/fold"
)

var (
	runInput string
	runOut   string
	msaFile  string
	msaDir   string
)

// runCmd resolves and predicts a single input payload.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve one input.json with pre-computed A3M MSAs and predict it",
	Long: `Run a single prediction from an input payload and pre-computed A3M files.

MSA sources are tried per protein chain in priority order: an unpaired MSA
already inline in the payload, a {chain}.a3m file inside --unpaired-msa-dir,
then the single --unpaired-msa file (first protein only). Loaded MSAs are
cleaned before use: invalid characters are repaired, entries with too many
invalid characters or a mismatched aligned length are dropped.`,
	Run: runSingle,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "path to the input JSON payload")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "output directory (default: the input's directory)")
	runCmd.Flags().StringVar(&msaFile, "unpaired-msa", "", "path to a single unpaired A3M file")
	runCmd.Flags().StringVar(&msaDir, "unpaired-msa-dir", "", "directory of unpaired A3M files named {chain}.a3m")

	runCmd.MarkFlagRequired("input")

	RootCmd.AddCommand(runCmd)
}

func runSingle(cmd *cobra.Command, args []string) {
	conf := config.New()

	in, err := fold.ReadInput(runInput)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("processing fold input %s", in.Name)

	inputDir := filepath.Dir(runInput)
	outDir := runOut
	if outDir == "" {
		outDir = inputDir
	}

	if err := fold.AttachMsa(in, msaDir, msaFile); err != nil {
		log.Fatalf("%v", err)
	}

	var searcher fold.TemplateSearcher
	if conf.Search.Enabled && conf.Search.Ready() {
		searcher = fold.NewHmmerSearcher(conf.Search)
	}
	if err := fold.Resolve(in, inputDir, conf.Search, searcher); err != nil {
		log.Fatalf("%v", err)
	}

	if !conf.Predict.Enabled {
		resolved := filepath.Join(outDir, "resolved_input.json")
		if err := in.Write(resolved); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("inference disabled, wrote %s", resolved)
		return
	}

	runner, err := fold.NewExecRunner(conf.Predict.Command, conf.Predict.ModelDir)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := runner.Run(in, outDir); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("results saved to %s", outDir)
}
