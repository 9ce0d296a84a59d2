package mutate

import (
	"log/slog"
	"os"
)

// Phase names the steps of the mutation pipeline, in execution order.
type Phase string

const (
	PhaseValidate Phase = "validate"
	PhaseBackup   Phase = "backup"
	PhaseBuild    Phase = "build"
	PhaseVerify   Phase = "verify"
	PhaseSwap     Phase = "swap"
	PhaseCleanup  Phase = "cleanup"
)

// Observer receives a callback at each phase boundary. Implementations
// must not mutate the request; they exist so a shell (CLI, TUI, test
// harness) can render progress without the pipeline knowing how.
type Observer interface {
	Phase(phase Phase, req Request)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(phase Phase, req Request)

// Phase implements Observer.
func (f ObserverFunc) Phase(phase Phase, req Request) { f(phase, req) }

// Receipt is the structured outcome of a successful mutation — enough
// context to audit or diagnose the operation without re-running it.
type Receipt struct {
	Path     string `json:"path"`
	Kind     Kind   `json:"kind"`
	Position int64  `json:"position"`

	// OldByte is the byte replaced or removed; zero for add.
	OldByte byte `json:"old_byte"`

	// NewByte is the byte written; zero for remove.
	NewByte byte `json:"new_byte"`

	OriginalSize int64 `json:"original_size"`
	NewSize      int64 `json:"new_size"`
	Chunks       int64 `json:"chunks"`

	// PrefixChecksum and SuffixChecksum are the verification digests of
	// the byte ranges before and after the target offset.
	PrefixChecksum uint64 `json:"prefix_checksum"`
	SuffixChecksum uint64 `json:"suffix_checksum"`
}

// Pipeline applies mutation requests through the six-phase protocol. The
// zero value is usable: it logs to slog.Default and observes nothing.
//
// Pipelines are stateless and safe for sequential reuse. No lock is taken
// on the target path; two invocations racing on the same file is
// undefined and is the caller's responsibility to prevent.
type Pipeline struct {
	// Log receives structured progress diagnostics. Nil means
	// slog.Default().
	Log *slog.Logger

	// Observer is called at each phase boundary. Nil means no callbacks.
	Observer Observer
}

// Apply runs one mutation request to completion or terminal error.
//
// Failure states on disk, by phase:
//   - validate: nothing was touched.
//   - backup: nothing was touched beyond a possibly deleted partial backup.
//   - build: partial draft deleted, backup left in place.
//   - verify: draft deleted, backup left in place.
//   - swap: original, backup and draft all preserved for manual recovery.
//   - cleanup: operation already succeeded; a backup that cannot be
//     deleted is logged and retained, not an error.
func (p *Pipeline) Apply(req Request) (*Receipt, error) {
	log := p.logger().With(
		"path", req.Path,
		"op", req.Op.String(),
		"position", req.Position,
	)

	p.observe(PhaseValidate, req)
	originalSize, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	backupPath, draftPath, err := siblingPaths(req.Path)
	if err != nil {
		return nil, err
	}

	p.observe(PhaseBackup, req)
	if err := createBackup(req.Path, backupPath); err != nil {
		return nil, err
	}
	log.Debug("backup created", "backup", backupPath)

	p.observe(PhaseBuild, req)
	build, err := buildDraft(req.Path, draftPath, req.Position, req.Op, log)
	if err != nil {
		return nil, err
	}

	p.observe(PhaseVerify, req)
	proof, err := verifyMutation(req.Path, draftPath, req.Position, req.Op, build.oldByte, log)
	if err != nil {
		// The verifier leaves the draft for inspection; the operation
		// does not. Remove it so the only artifact of a failed run is
		// the backup.
		os.Remove(draftPath)
		return nil, err
	}

	p.observe(PhaseSwap, req)
	if err := promote(draftPath, req.Path, req.Position); err != nil {
		log.Error("swap failed; original, backup and draft preserved",
			"backup", backupPath, "draft", draftPath)
		return nil, err
	}
	log.Debug("original replaced by draft")

	p.observe(PhaseCleanup, req)
	if err := removeBackup(backupPath); err != nil {
		// Sole non-fatal condition: the mutation is complete, the stale
		// backup is just litter.
		log.Warn("could not remove backup; retained on disk",
			"backup", backupPath, "error", err)
	}

	receipt := &Receipt{
		Path:           req.Path,
		Kind:           req.Op.Kind,
		Position:       req.Position,
		OldByte:        build.oldByte,
		OriginalSize:   originalSize,
		NewSize:        proof.draftSize,
		Chunks:         build.chunks,
		PrefixChecksum: proof.prefixChecksum,
		SuffixChecksum: proof.suffixChecksum,
	}
	if req.Op.Kind != KindRemove {
		receipt.NewByte = req.Op.Value
	}

	log.Info("mutation applied",
		"original_size", receipt.OriginalSize,
		"new_size", receipt.NewSize,
		"chunks", receipt.Chunks)

	return receipt, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

func (p *Pipeline) observe(phase Phase, req Request) {
	if p.Observer != nil {
		p.Observer.Phase(phase, req)
	}
}

// ReplaceByte replaces the byte at position with value. File length is
// unchanged.
func ReplaceByte(path string, position int64, value byte) error {
	_, err := (&Pipeline{}).Apply(Request{Path: path, Position: position, Op: Replace(value)})
	return err
}

// RemoveByte removes the byte at position; all later bytes shift back by
// one and the file shrinks by one byte.
func RemoveByte(path string, position int64) error {
	_, err := (&Pipeline{}).Apply(Request{Path: path, Position: position, Op: Remove()})
	return err
}

// AddByte inserts value at position; the byte previously there and all
// later bytes shift forward by one and the file grows by one byte.
// Position == file length appends.
func AddByte(path string, position int64, value byte) error {
	_, err := (&Pipeline{}).Apply(Request{Path: path, Position: position, Op: Add(value)})
	return err
}
