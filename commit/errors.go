package commit

import (
	"errors"
	"fmt"
)

// ErrEmptyCommit is returned when a commit is requested with zero triples.
// It is raised before any store I/O happens.
var ErrEmptyCommit = errors.New("commit rejected: no triples")

// AuditError reports a failure during the pre-commit audit phase. The commit
// aborts before any mutation of the primary data scope.
type AuditError struct {
	Err error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("pre-commit audit failed: %v", e.Err)
}

func (e *AuditError) Unwrap() error { return e.Err }

// DeleteBatchError reports a failed stale-entity deletion batch. Batches
// before Batch are already applied and are not rolled back.
type DeleteBatchError struct {
	Batch int
	Err   error
}

func (e *DeleteBatchError) Error() string {
	return fmt.Sprintf("stale-data delete batch %d failed: %v", e.Batch, e.Err)
}

func (e *DeleteBatchError) Unwrap() error { return e.Err }

// InsertBatchError reports a failed insertion batch. Batches before Batch
// are already committed and are not rolled back.
type InsertBatchError struct {
	Batch int
	Err   error
}

func (e *InsertBatchError) Error() string {
	return fmt.Sprintf("insert batch %d failed: %v", e.Batch, e.Err)
}

func (e *InsertBatchError) Unwrap() error { return e.Err }
