package scenario

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lineality/bytesurgeon/internal/mutate"
)

// Result is the observable outcome of a scenario run. It deliberately
// excludes checksums and absolute paths so golden files stay stable
// across machines.
type Result struct {
	ScenarioName string       `json:"scenario_name"`
	Steps        []StepResult `json:"steps"`
	FinalSize    int64        `json:"final_size"`
}

// StepResult records one step's outcome.
type StepResult struct {
	Op       string `json:"op"`
	Position int64  `json:"position"`

	// Outcome is "applied" on success, or the error code the step
	// failed with.
	Outcome string `json:"outcome"`

	// OldByte and NewByte are hex renderings of the bytes involved;
	// which appear depends on the op. Absent for failed steps.
	OldByte string `json:"old_byte,omitempty"`
	NewByte string `json:"new_byte,omitempty"`

	// Size is the target file's size after the step.
	Size int64 `json:"size"`
}

// Run executes a scenario in a scratch directory and returns its result.
// A step that fails with an unexpected error, or succeeds where the
// scenario demanded a failure, aborts the run.
func Run(sc *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "bytesurgeon-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	target := filepath.Join(dir, "target.bin")
	if err := os.WriteFile(target, toBytes(sc.Initial), 0o644); err != nil {
		return nil, fmt.Errorf("write initial file: %w", err)
	}

	pipe := &mutate.Pipeline{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	result := &Result{ScenarioName: sc.Name}

	for i, step := range sc.Steps {
		req, err := buildRequest(target, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		receipt, applyErr := pipe.Apply(req)

		sr := StepResult{Op: step.Op, Position: step.Position}
		switch {
		case applyErr == nil && step.WantError != "":
			return nil, fmt.Errorf("step %d: succeeded, want error %s", i, step.WantError)
		case applyErr == nil:
			sr.Outcome = "applied"
			if step.Op != "add" {
				sr.OldByte = fmt.Sprintf("0x%02X", receipt.OldByte)
			}
			if step.Op != "remove" {
				sr.NewByte = fmt.Sprintf("0x%02X", receipt.NewByte)
			}
		case string(mutate.CodeOf(applyErr)) == step.WantError:
			sr.Outcome = step.WantError
		default:
			return nil, fmt.Errorf("step %d: unexpected error: %w", i, applyErr)
		}

		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("step %d: stat target: %w", i, err)
		}
		sr.Size = info.Size()
		result.Steps = append(result.Steps, sr)
	}

	final, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read final file: %w", err)
	}
	result.FinalSize = int64(len(final))

	if sc.Final != nil {
		want := toBytes(*sc.Final)
		if !bytes.Equal(final, want) {
			return nil, fmt.Errorf("final content mismatch: got %X, want %X", final, want)
		}
	}

	if err := checkNoResidue(target); err != nil {
		return nil, err
	}
	return result, nil
}

func buildRequest(target string, step Step) (mutate.Request, error) {
	req := mutate.Request{Path: target, Position: step.Position}
	switch step.Op {
	case "replace":
		req.Op = mutate.Replace(byte(*step.Value))
	case "remove":
		req.Op = mutate.Remove()
	case "add":
		req.Op = mutate.Add(byte(*step.Value))
	default:
		return req, fmt.Errorf("unknown op %q", step.Op)
	}
	return req, nil
}

// checkNoResidue asserts the run left no sibling artifacts behind.
func checkNoResidue(target string) error {
	for _, suffix := range []string{".backup", ".draft"} {
		if _, err := os.Stat(target + suffix); err == nil {
			return fmt.Errorf("stray artifact left behind: %s", target+suffix)
		}
	}
	return nil
}
