package main

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/charlesxu90/alphafold3/cmd"
	"github.com/spf13/cobra/doc"
)

const docHeader = `---
layout: default
title: %s
nav_order: %d
---
`

// nav order of each command's Markdown page
var navOrder = map[string]int{
	"af3":         0,
	"af3_prepare": 1,
	"af3_run":     2,
	"af3_batch":   3,
	"af3_clean":   4,
}

// makeDocs writes Markdown documentation for every command to ./docs
func makeDocs() {
	if err := doc.GenMarkdownTreeCustom(cmd.RootCmd, "./docs", filePrepender, linkHandler); err != nil {
		fmt.Println(err.Error())
	}
}

// filePrepender adds the YAML heading required by the docs theme
func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))
	title := strings.TrimPrefix(base, "af3_")

	return fmt.Sprintf(docHeader, title, navOrder[base])
}

// linkHandler returns the URL to a documentation page
func linkHandler(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, path.Ext(name))

	if base == "af3" {
		return "/"
	}
	return base
}
