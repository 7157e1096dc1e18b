package mtx

import "errors"

var (
	// ErrValidation indicates the (entries, features, barcodes) triple
	// violates one of the validity clauses. The wrapped message names
	// the failing clause and identifier.
	ErrValidation = errors.New("matrix validation failed")
	// ErrLookup indicates an index or identifier has no corresponding
	// entry in a reference list or remapping.
	ErrLookup = errors.New("identifier lookup failed")
	// ErrShape indicates a structural mismatch between merge inputs.
	ErrShape = errors.New("shape mismatch")
	// ErrFormat indicates a malformed matrix file.
	ErrFormat = errors.New("malformed matrix file")
)
