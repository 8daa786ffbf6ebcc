package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/charlesxu90/alphafold3/internal/a3m"
)

// cleanCmd cleans an A3M file in place.
var cleanCmd = &cobra.Command{
	Use:   "clean [a3m file]",
	Short: "Repair and filter an A3M alignment file in place",
	Long: `Clean an A3M alignment file in place.

Invalid characters in each entry are repaired (lowercase dropped, aligned
positions replaced with gaps), entries with more than 10% invalid characters
are rejected, and surviving entries whose aligned length differs from the
query's are dropped.`,
	Args: cobra.ExactArgs(1),
	Run:  runClean,
}

func init() {
	RootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) {
	path := args[0]

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}

	al := a3m.Clean(string(raw))
	if al.Len() == 0 {
		log.Fatalf("no valid entries left in %s", path)
	}

	if err := os.WriteFile(path, []byte(al.String()+"\n"), 0644); err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}
	log.Printf("cleaned %s: %d entries kept", path, al.Len())
}
