package trace

import "errors"

// ErrMalformed indicates a trace line that is not a valid transition record.
var ErrMalformed = errors.New("malformed trace record")
