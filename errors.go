package repdata

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	// ErrDeltaKindMismatch: a delta's payload does not match the target
	// RDT. A protocol or data corruption error, never retried.
	ErrDeltaKindMismatch = stderrors.New("repdata: delta kind mismatch")
	// ErrUnknownKey: an update delta names a key this replica never saw,
	// usually a missed initial delta. The host has to resync.
	ErrUnknownKey = stderrors.New("repdata: update for an unknown key")

	ErrUnknownKind = stderrors.New("repdata: unknown data kind")
	ErrBadDelta    = stderrors.New("repdata: malformed delta record")
)

func kindMismatch(want, got Kind) error {
	return errors.Wrapf(ErrDeltaKindMismatch, "want %s, got %s", want, got)
}
