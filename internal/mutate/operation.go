package mutate

import "fmt"

// Kind identifies a mutation operation.
type Kind string

const (
	// KindReplace writes a new value over the byte at the target offset.
	// File length is unchanged.
	KindReplace Kind = "replace"

	// KindRemove drops the byte at the target offset; every later byte
	// lands one offset earlier (-1 frame-shift). File length shrinks by 1.
	KindRemove Kind = "remove"

	// KindAdd inserts a new byte at the target offset; the byte previously
	// there and every later byte land one offset later (+1 frame-shift).
	// File length grows by 1. Position == file length means append.
	KindAdd Kind = "add"
)

// Operation is the tagged variant the pipeline is parameterized by: a
// kind, the value payload for the kinds that carry one, and (derived) the
// expected length delta and the at-position proof rule in verify.go.
type Operation struct {
	Kind Kind

	// Value is the byte written at the target offset. Meaningful for
	// KindReplace and KindAdd; ignored for KindRemove.
	Value byte
}

// Replace builds the replace-byte operation.
func Replace(value byte) Operation { return Operation{Kind: KindReplace, Value: value} }

// Remove builds the remove-byte operation.
func Remove() Operation { return Operation{Kind: KindRemove} }

// Add builds the add-byte operation.
func Add(value byte) Operation { return Operation{Kind: KindAdd, Value: value} }

// SizeDelta returns the expected draft length minus the original length.
func (op Operation) SizeDelta() int64 {
	switch op.Kind {
	case KindRemove:
		return -1
	case KindAdd:
		return 1
	default:
		return 0
	}
}

// String renders the operation for diagnostics.
func (op Operation) String() string {
	switch op.Kind {
	case KindRemove:
		return "remove"
	default:
		return fmt.Sprintf("%s(0x%02X)", op.Kind, op.Value)
	}
}

// Request describes one mutation invocation. It is owned by a single call
// to Pipeline.Apply and is not retained.
type Request struct {
	// Path is the file to mutate.
	Path string

	// Position is the zero-indexed byte offset of the operation.
	Position int64

	// Op is the operation to apply at Position.
	Op Operation
}
