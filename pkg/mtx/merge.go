package mtx

import "fmt"

// Merge combines matrices from independent samples that share the same
// feature universe but have disjoint barcode universes. Feature lists
// are compared as sets and must be identical across inputs; barcode
// lists must not overlap anywhere. Entries and barcode lists are
// concatenated in input order; the feature list is copied from the
// first input. A single-element input is returned as a fresh copy.
func Merge(ms []*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("%w: no matrices to merge", ErrShape)
	}

	for _, m := range ms {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}

	if len(ms) == 1 {
		return ms[0].Clone(), nil
	}

	first := make(map[string]struct{}, len(ms[0].Features))
	for _, f := range ms[0].Features {
		first[f] = struct{}{}
	}
	for i := 1; i < len(ms); i++ {
		if len(ms[i].Features) != len(first) {
			return nil, fmt.Errorf("%w: matrix %d has %d features, matrix 0 has %d", ErrShape, i, len(ms[i].Features), len(first))
		}
		for _, f := range ms[i].Features {
			if _, ok := first[f]; !ok {
				return nil, fmt.Errorf("%w: matrix %d has feature %q absent from matrix 0", ErrShape, i, f)
			}
		}
	}

	// Disjointness, not just set equality: a barcode may appear in at
	// most one input.
	seen := make(map[string]int)
	for i, m := range ms {
		for _, b := range m.Barcodes {
			if j, dup := seen[b]; dup {
				return nil, fmt.Errorf("%w: barcode %q appears in both matrix %d and matrix %d", ErrShape, b, j, i)
			}
			seen[b] = i
		}
	}

	out := &Matrix{Features: make([]string, len(ms[0].Features))}
	copy(out.Features, ms[0].Features)
	for _, m := range ms {
		out.Entries = append(out.Entries, m.Entries...)
		out.Barcodes = append(out.Barcodes, m.Barcodes...)
	}

	return out, nil
}
