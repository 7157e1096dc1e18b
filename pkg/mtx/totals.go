package mtx

import (
	"bufio"
	"fmt"
	"strings"
)

// Totals holds per-identifier summed counts from a single pass over a
// matrix file.
type Totals struct {
	// Features maps feature identifier to its total count. Every
	// identifier from the features file appears, including those with
	// total 0.
	Features map[string]uint64

	// Barcodes maps barcode identifier to its total count, same
	// coverage guarantee as Features.
	Barcodes map[string]uint64
}

// ComputeTotals streams the matrix file once and sums counts per
// feature and per barcode. Memory stays proportional to the number of
// distinct identifiers rather than the number of nonzero records; the
// coordinate table is never materialized. Lines beginning with "%" are
// skipped, and the first remaining line (the dimensions header) is
// discarded.
func ComputeTotals(matrixPath, featuresPath, barcodesPath string) (*Totals, error) {
	features, err := readIdentifiers(featuresPath)
	if err != nil {
		return nil, err
	}
	barcodes, err := readIdentifiers(barcodesPath)
	if err != nil {
		return nil, err
	}

	totals := &Totals{
		Features: make(map[string]uint64, len(features)),
		Barcodes: make(map[string]uint64, len(barcodes)),
	}
	for _, f := range features {
		totals.Features[f] = 0
	}
	for _, b := range barcodes {
		totals.Barcodes[b] = 0
	}

	reader, closer, err := openText(matrixPath)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	sawDims := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "%") {
			continue
		}
		if !sawDims {
			sawDims = true
			continue
		}
		if line == "" {
			continue
		}
		fi, bi, count, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", matrixPath, lineNo, err)
		}
		if fi < 1 || fi > len(features) {
			return nil, fmt.Errorf("%w: feature index %d out of range [1, %d] at %s line %d", ErrLookup, fi, len(features), matrixPath, lineNo)
		}
		if bi < 1 || bi > len(barcodes) {
			return nil, fmt.Errorf("%w: barcode index %d out of range [1, %d] at %s line %d", ErrLookup, bi, len(barcodes), matrixPath, lineNo)
		}
		totals.Features[features[fi-1]] += count
		totals.Barcodes[barcodes[bi-1]] += count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", matrixPath, err)
	}

	return totals, nil
}
