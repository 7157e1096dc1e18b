package mtx

import "fmt"

// pairKey keys the accumulation map for grouped sums.
type pairKey struct {
	barcode string
	feature string
}

// RemapFeatures substitutes every feature through mapping and
// consolidates the result. The mapping must cover every identifier in
// Features, not just those observed in the entries. Entries that land
// on the same (barcode, new feature) pair after substitution are summed
// into one entry. The new feature list is the mapping's image in order
// of first occurrence over the original list, so many-to-one merges
// collapse to a single entry. The barcode list is unchanged and the
// output is validated before it is returned.
func (m *Matrix) RemapFeatures(mapping map[string]string) (*Matrix, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	for _, f := range m.Features {
		if _, ok := mapping[f]; !ok {
			return nil, fmt.Errorf("%w: remapping has no entry for feature %q", ErrLookup, f)
		}
	}

	// Explicit accumulation pass: (barcode, new feature) -> running sum,
	// remembering first-occurrence order for deterministic output.
	sums := make(map[pairKey]uint64, len(m.Entries))
	var order []pairKey
	for _, e := range m.Entries {
		k := pairKey{barcode: e.Barcode, feature: mapping[e.Feature]}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += e.Count
	}

	out := &Matrix{
		Entries:  make([]Entry, 0, len(order)),
		Barcodes: make([]string, len(m.Barcodes)),
	}
	copy(out.Barcodes, m.Barcodes)
	for _, k := range order {
		out.Entries = append(out.Entries, Entry{Feature: k.feature, Barcode: k.barcode, Count: sums[k]})
	}

	seen := make(map[string]struct{}, len(m.Features))
	for _, f := range m.Features {
		nf := mapping[f]
		if _, dup := seen[nf]; dup {
			continue
		}
		seen[nf] = struct{}{}
		out.Features = append(out.Features, nf)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
