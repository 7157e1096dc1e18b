// Package mtx implements an in-memory sparse count-matrix engine over the
// MatrixMarket coordinate text format used for feature-by-barcode data.
//
// A matrix is a triple: a coordinate table of (feature, barcode, count)
// entries plus the ordered lists of all feature and barcode identifiers
// that could carry counts (including ones with zero observed count). The
// list order defines the persisted 1-based index. Every operation
// validates the triple on entry and returns a fresh triple; nothing is
// shared or mutated in place.
package mtx

import "fmt"

// Entry is a single nonzero cell of the coordinate table.
type Entry struct {
	// Feature is the feature identifier (matrix column).
	Feature string

	// Barcode is the barcode identifier (matrix row).
	Barcode string

	// Count is the observed count. Counts are non-negative integers;
	// the text format cannot represent anything else.
	Count uint64
}

// Matrix bundles a coordinate table with its feature and barcode
// universes. Entries may contain duplicate (feature, barcode) pairs;
// aggregating operations consolidate them by summation.
type Matrix struct {
	Entries  []Entry
	Features []string
	Barcodes []string
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		Entries:  make([]Entry, len(m.Entries)),
		Features: make([]string, len(m.Features)),
		Barcodes: make([]string, len(m.Barcodes)),
	}
	copy(c.Entries, m.Entries)
	copy(c.Features, m.Features)
	copy(c.Barcodes, m.Barcodes)
	return c
}

// Validate checks the four validity clauses:
// no duplicate features, no duplicate barcodes, every entry's feature is
// a member of Features, every entry's barcode is a member of Barcodes.
// The returned error wraps ErrValidation and names the violated clause.
func (m *Matrix) Validate() error {
	features := make(map[string]struct{}, len(m.Features))
	for _, f := range m.Features {
		if _, dup := features[f]; dup {
			return fmt.Errorf("%w: duplicate feature %q in feature list", ErrValidation, f)
		}
		features[f] = struct{}{}
	}

	barcodes := make(map[string]struct{}, len(m.Barcodes))
	for _, b := range m.Barcodes {
		if _, dup := barcodes[b]; dup {
			return fmt.Errorf("%w: duplicate barcode %q in barcode list", ErrValidation, b)
		}
		barcodes[b] = struct{}{}
	}

	for i, e := range m.Entries {
		if _, ok := features[e.Feature]; !ok {
			return fmt.Errorf("%w: entry %d references feature %q not in feature list", ErrValidation, i, e.Feature)
		}
		if _, ok := barcodes[e.Barcode]; !ok {
			return fmt.Errorf("%w: entry %d references barcode %q not in barcode list", ErrValidation, i, e.Barcode)
		}
	}

	return nil
}

// indexOf builds a 1-based identifier-to-index map over ids.
func indexOf(ids []string) map[string]int {
	idx := make(map[string]int, len(ids))
	for i, id := range ids {
		idx[id] = i + 1
	}
	return idx
}
