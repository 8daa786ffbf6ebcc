package fold

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charlesxu90/alphafold3/config"
)

// Report aggregates the outcome of one batch run. Skipped jobs are
// neither successes nor failures.
type Report struct {
	Successful int
	Failed     int
	Skipped    int
	FailedDirs []string
}

// FindInputDirs returns every directory that directly contains a file
// named inputName: the base directory itself, plus its immediate
// subdirectories. Discovery recurses exactly one level, in sorted
// order.
func FindInputDirs(base, inputName string) ([]string, error) {
	var dirs []string

	if _, err := os.Stat(filepath.Join(base, inputName)); err == nil {
		dirs = append(dirs, base)
	}

	items, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", base, err)
	}
	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		sub := filepath.Join(base, item.Name())
		if _, err := os.Stat(filepath.Join(sub, inputName)); err == nil {
			dirs = append(dirs, sub)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Complete reports whether a job directory already holds its completion
// marker, either as the exact marker name or with any seed prefix
// (*_{marker}). Only existence matters, never content.
func Complete(dir, marker string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*_"+marker))
	if err == nil && len(matches) > 0 {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
		return true
	}
	return false
}

// RunBatch processes every job directory strictly sequentially, sharing
// one runner across all of them. A failure in one job is recorded and
// never aborts the rest of the batch.
func RunBatch(dirs []string, runner Runner, searcher TemplateSearcher, conf config.Config) Report {
	var report Report

	var pending []string
	for _, dir := range dirs {
		if conf.Batch.SkipExisting && Complete(dir, conf.Batch.OutputMarker) {
			report.Skipped++
			continue
		}
		pending = append(pending, dir)
	}
	if report.Skipped > 0 {
		log.Printf("skipping %d already completed predictions", report.Skipped)
	}
	if len(pending) == 0 {
		log.Printf("all predictions already complete, nothing to do")
		return report
	}

	total := len(pending)
	for i, dir := range pending {
		name := filepath.Base(dir)
		log.Printf("[%d/%d] processing %s...", i+1, total, name)
		start := time.Now()

		if err := processJob(dir, runner, searcher, conf); err != nil {
			report.Failed++
			report.FailedDirs = append(report.FailedDirs, dir)
			log.Printf("[%d/%d] error processing %s: %v", i+1, total, name, err)
			continue
		}
		report.Successful++
		log.Printf("[%d/%d] completed %s in %.1fs", i+1, total, name, time.Since(start).Seconds())
	}
	return report
}

// processJob resolves and predicts a single job directory.
func processJob(dir string, runner Runner, searcher TemplateSearcher, conf config.Config) error {
	in, err := ReadInput(filepath.Join(dir, conf.Batch.InputName))
	if err != nil {
		return err
	}
	if err := Resolve(in, dir, conf.Search, searcher); err != nil {
		return err
	}
	if runner == nil {
		// inference disabled: resolving the payload was the whole job
		return in.Write(filepath.Join(dir, "resolved_input.json"))
	}
	return runner.Run(in, dir)
}

// LogReport writes the final batch summary.
func (r Report) LogReport() {
	total := r.Successful + r.Failed
	log.Printf("batch processing complete")
	log.Printf("  successful: %d/%d", r.Successful, total)
	log.Printf("  failed: %d/%d", r.Failed, total)
	if r.Skipped > 0 {
		log.Printf("  skipped: %d", r.Skipped)
	}
	if len(r.FailedDirs) > 0 {
		log.Printf("failed directories:")
		for _, d := range r.FailedDirs {
			log.Printf("  - %s", d)
		}
	}
}
