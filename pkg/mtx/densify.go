package mtx

import "fmt"

// Dense is the fully materialized rectangular form of a matrix: one
// cell for every (barcode, feature) pair, with 0 where the coordinate
// table had no entry. Rows are barcodes, columns are features.
type Dense struct {
	Features []string
	Barcodes []string

	// Counts is indexed [barcode][feature], parallel to the Barcodes
	// and Features lists.
	Counts [][]uint64
}

// At returns the count for the given row and column.
func (d *Dense) At(barcode, feature int) uint64 {
	return d.Counts[barcode][feature]
}

// EstimatedBytes returns the approximate in-memory size of a dense
// matrix with the given dimensions.
func EstimatedBytes(barcodes, features int) uint64 {
	return uint64(barcodes) * uint64(features) * 8
}

// Densify materializes the matrix into its dense rectangular form.
// keepFeatures and keepBarcodes restrict the output to a subset of the
// feature/barcode universes; nil means keep everything. Every element
// of a keep-list must be a member of the corresponding full list.
// Entries outside the keep-lists are dropped symmetrically on both
// axes; duplicate (feature, barcode) entries are summed. Counts stay
// integers, with 0 filling absent pairs.
func (m *Matrix) Densify(keepFeatures, keepBarcodes []string) (*Dense, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if keepFeatures == nil {
		keepFeatures = m.Features
	}
	if keepBarcodes == nil {
		keepBarcodes = m.Barcodes
	}

	full := make(map[string]struct{}, len(m.Features))
	for _, f := range m.Features {
		full[f] = struct{}{}
	}
	featureCol := make(map[string]int, len(keepFeatures))
	for i, f := range keepFeatures {
		if _, ok := full[f]; !ok {
			return nil, fmt.Errorf("%w: keep feature %q not in feature list", ErrLookup, f)
		}
		featureCol[f] = i
	}

	full = make(map[string]struct{}, len(m.Barcodes))
	for _, b := range m.Barcodes {
		full[b] = struct{}{}
	}
	barcodeRow := make(map[string]int, len(keepBarcodes))
	for i, b := range keepBarcodes {
		if _, ok := full[b]; !ok {
			return nil, fmt.Errorf("%w: keep barcode %q not in barcode list", ErrLookup, b)
		}
		barcodeRow[b] = i
	}

	d := &Dense{
		Features: make([]string, len(keepFeatures)),
		Barcodes: make([]string, len(keepBarcodes)),
		Counts:   make([][]uint64, len(keepBarcodes)),
	}
	copy(d.Features, keepFeatures)
	copy(d.Barcodes, keepBarcodes)
	for i := range d.Counts {
		d.Counts[i] = make([]uint64, len(keepFeatures))
	}

	for _, e := range m.Entries {
		col, ok := featureCol[e.Feature]
		if !ok {
			continue
		}
		row, ok := barcodeRow[e.Barcode]
		if !ok {
			continue
		}
		d.Counts[row][col] += e.Count
	}

	return d, nil
}
