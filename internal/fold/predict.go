package fold

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// A Runner executes the external structure-prediction command for one
// resolved payload, writing its outputs (and completion marker) into
// outDir. Runners are reused across a whole batch and are only safe for
// sequential use.
type Runner interface {
	Run(in *Input, outDir string) error
}

// ExecRunner shells out to the prediction command once per job. The
// command path and shared arguments are resolved a single time at
// construction, since that is the expensive part worth amortizing
// across a batch.
type ExecRunner struct {
	command  string
	modelDir string
}

// NewExecRunner resolves the prediction command and returns a reusable
// runner for it.
func NewExecRunner(command, modelDir string) (*ExecRunner, error) {
	if command == "" {
		return nil, fmt.Errorf("no prediction command configured")
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("prediction command not found: %w", err)
	}
	return &ExecRunner{command: path, modelDir: modelDir}, nil
}

// Run writes the resolved payload next to the job's outputs and invokes
// the prediction command on it. Any non-zero exit is the job's failure.
func (r *ExecRunner) Run(in *Input, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	resolved := filepath.Join(outDir, "resolved_input.json")
	if err := in.Write(resolved); err != nil {
		return err
	}

	args := []string{
		"--json_path=" + resolved,
		"--output_dir=" + outDir,
	}
	if r.modelDir != "" {
		args = append(args, "--model_dir="+r.modelDir)
	}

	cmd := exec.Command(r.command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("prediction failed for %s: %w: %s", in.Name, err, out)
	}
	return nil
}
