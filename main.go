package main

import (
	"os"

	"github.com/charlesxu90/alphafold3/cmd"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "gen-docs" {
		makeDocs()
		return
	}
	cmd.Execute()
}
