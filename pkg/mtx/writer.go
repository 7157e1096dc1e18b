package mtx

import (
	"bufio"
	"fmt"
	"os"
)

// TriplePaths holds the three file paths produced by Write.
type TriplePaths struct {
	Matrix   string
	Features string
	Barcodes string
}

// Paths returns the output paths Write would produce for prefix.
func Paths(prefix string) TriplePaths {
	return TriplePaths{
		Matrix:   prefix + "matrix.mtx",
		Features: prefix + "features.tsv",
		Barcodes: prefix + "barcodes.tsv",
	}
}

// Write validates the matrix and emits the triple as
// {prefix}matrix.mtx, {prefix}features.tsv and {prefix}barcodes.tsv.
// Indices in the matrix file are 1-based positions into the identifier
// files; records are written in entry order, which is not guaranteed
// sorted. A partially written file left behind by an error is invalid
// and is the caller's to clean up.
func (m *Matrix) Write(prefix string) (TriplePaths, error) {
	paths := Paths(prefix)

	if err := m.Validate(); err != nil {
		return TriplePaths{}, err
	}

	featureIdx := indexOf(m.Features)
	barcodeIdx := indexOf(m.Barcodes)

	if err := writeMatrixFile(paths.Matrix, m, featureIdx, barcodeIdx); err != nil {
		return TriplePaths{}, err
	}
	if err := writeIdentifierFile(paths.Features, m.Features); err != nil {
		return TriplePaths{}, err
	}
	if err := writeIdentifierFile(paths.Barcodes, m.Barcodes); err != nil {
		return TriplePaths{}, err
	}

	return paths, nil
}

func writeMatrixFile(path string, m *Matrix, featureIdx, barcodeIdx map[string]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "%%MatrixMarket matrix coordinate integer general")
	fmt.Fprintln(w, "%")
	fmt.Fprintf(w, "%d %d %d\n", len(m.Features), len(m.Barcodes), len(m.Entries))

	for _, e := range m.Entries {
		fi, ok := featureIdx[e.Feature]
		if !ok {
			// Validate already admitted this entry, so a missing index
			// means the lists were mutated mid-write.
			return fmt.Errorf("%w: no index for feature %q", ErrLookup, e.Feature)
		}
		bi, ok := barcodeIdx[e.Barcode]
		if !ok {
			return fmt.Errorf("%w: no index for barcode %q", ErrLookup, e.Barcode)
		}
		if _, err := fmt.Fprintf(w, "%d %d %d\n", fi, bi, e.Count); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func writeIdentifierFile(path string, ids []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
