package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/charlesxu90/alphafold3/config"
	"github.com/charlesxu90/alphafold3/internal/fold"
)

var (
	batchBase string
	batchDirs []string
)

// batchCmd runs every job directory under a base directory in sequence.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolve and predict every job directory under a base directory",
	Long: `Run predictions for a batch of job directories.

Each job directory holds one input payload (see --input-json-name). Job
directories are discovered one level below the base directory; the base
directory itself counts when it holds a payload directly. Jobs whose output
already exists are skipped, and a failing job does not stop the rest of the
batch. The model handle is created once and shared across jobs.`,
	Run: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchBase, "dir", "d", "", "base directory holding job directories")
	batchCmd.Flags().StringSliceVar(&batchDirs, "dirs", nil, "explicit job directories (overrides --dir discovery)")
	batchCmd.Flags().String("input-json-name", "input.json", "payload file name inside each job directory")
	batchCmd.Flags().Bool("skip-existing", true, "skip jobs whose output marker already exists")
	batchCmd.Flags().String("output-marker", "model", "output name, or suffix of {seed}_{name} directories, marking a finished job")

	viper.BindPFlag("batch.input-json-name", batchCmd.Flags().Lookup("input-json-name"))
	viper.BindPFlag("batch.skip-existing", batchCmd.Flags().Lookup("skip-existing"))
	viper.BindPFlag("batch.output-marker", batchCmd.Flags().Lookup("output-marker"))

	RootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) {
	if batchBase == "" && len(batchDirs) == 0 {
		log.Fatalf("one of --dir or --dirs is required")
	}

	conf := config.New()

	dirs := batchDirs
	if len(dirs) == 0 {
		found, err := fold.FindInputDirs(batchBase, conf.Batch.InputName)
		if err != nil {
			log.Fatalf("%v", err)
		}
		dirs = found
	}
	if len(dirs) == 0 {
		log.Fatalf("no job directories with %s under %s", conf.Batch.InputName, batchBase)
	}

	var searcher fold.TemplateSearcher
	if conf.Search.Enabled && conf.Search.Ready() {
		searcher = fold.NewHmmerSearcher(conf.Search)
	}

	var runner fold.Runner
	if conf.Predict.Enabled {
		execRunner, err := fold.NewExecRunner(conf.Predict.Command, conf.Predict.ModelDir)
		if err != nil {
			log.Fatalf("%v", err)
		}
		runner = execRunner
	}

	report := fold.RunBatch(dirs, runner, searcher, conf)
	report.LogReport()

	if report.Failed > 0 {
		log.Fatalf("%d of %d jobs failed", report.Failed, report.Failed+report.Successful)
	}
}
