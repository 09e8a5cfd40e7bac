package control

import "errors"

// ErrNotPersisted indicates a delay change took effect for this session but
// could not be saved for the next start.
var ErrNotPersisted = errors.New("debounce delay applied but not persisted")
