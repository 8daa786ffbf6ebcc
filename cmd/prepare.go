package cmd

import (
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlesxu90/alphafold3/internal/fold"
)

var (
	variantsPath string
	wtDataPath   string
	prepareOut   string
	ligandSmiles string
	ligandID     string
	modelSeeds   string
)

// prepareCmd derives per-variant input payloads from a wild-type result.
var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare per-variant input.json files from a wild-type data JSON",
	Long: `Prepare AlphaFold3 input configs for protein variants.

Each variant sequence from the FASTA file is transplanted into the wild-type
payload: the protein sequence is replaced, the unpaired MSA's query entry is
rewritten to the variant, and the wild-type templates are kept since they
remain valid for point mutations. One directory per variant is written under
the output directory, each holding an input.json.

Variants whose length differs from the wild type are skipped with a warning;
only point mutations are supported.`,
	Run: runPrepare,
}

func init() {
	prepareCmd.Flags().StringVarP(&variantsPath, "variants", "v", "", "path to a FASTA file with variant sequences")
	prepareCmd.Flags().StringVarP(&wtDataPath, "wt-json", "w", "", "path to the wild-type data JSON with processed MSA and templates")
	prepareCmd.Flags().StringVarP(&prepareOut, "out", "o", "", "output directory for variant configs")
	prepareCmd.Flags().StringVar(&ligandSmiles, "ligand-smiles", "", "optional SMILES string for a ligand to include")
	prepareCmd.Flags().StringVar(&ligandID, "ligand-id", "B", "chain id for the ligand")
	prepareCmd.Flags().StringVar(&modelSeeds, "model-seeds", "", "comma-separated model seeds (default: seeds from the wild-type JSON)")

	prepareCmd.MarkFlagRequired("variants")
	prepareCmd.MarkFlagRequired("wt-json")
	prepareCmd.MarkFlagRequired("out")

	RootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) {
	log.Printf("loading wild-type data from %s", wtDataPath)
	wt, err := fold.ReadInput(wtDataPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	wtProtein, err := wt.FirstProtein()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("wild type %s (%d aa)", wt.Name, len(wtProtein.Sequence))

	variants, err := fold.ReadVariants(variantsPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("loaded %d variant sequences", len(variants))

	seeds, err := parseSeeds(modelSeeds)
	if err != nil {
		log.Fatalf("invalid --model-seeds: %v", err)
	}

	report, err := fold.PrepareVariants(wt, variants, prepareOut, fold.PrepareOptions{
		LigandSmiles: ligandSmiles,
		LigandID:     ligandID,
		ModelSeeds:   seeds,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("created %d variant configs in %s", report.Created, prepareOut)
	if report.Skipped > 0 {
		log.Printf("skipped %d variants due to length mismatch", report.Skipped)
	}
}

// parseSeeds parses a comma-separated seed list like "1,2,3".
func parseSeeds(list string) ([]int, error) {
	if list == "" {
		return nil, nil
	}
	var seeds []int
	for _, s := range strings.Split(list, ",") {
		seed, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}
