package store

import "errors"

// ErrCheckpointNotFound is returned when a checkpoint ID or thread has
// no stored checkpoint.
var ErrCheckpointNotFound = errors.New("checkpoint not found")
