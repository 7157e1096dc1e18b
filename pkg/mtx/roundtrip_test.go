package mtx

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func sortedEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Feature != out[j].Feature {
			return out[i].Feature < out[j].Feature
		}
		if out[i].Barcode != out[j].Barcode {
			return out[i].Barcode < out[j].Barcode
		}
		return out[i].Count < out[j].Count
	})
	return out
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := &Matrix{
		Entries: []Entry{
			{Feature: "chr1:100-200", Barcode: "AACCGG", Count: 5},
			{Feature: "chr2:300-400", Barcode: "TTGGCC", Count: 1},
			// Duplicate pair; round trip preserves the multiset.
			{Feature: "chr1:100-200", Barcode: "AACCGG", Count: 2},
		},
		Features: []string{"chr1:100-200", "chr2:300-400", "chrX:1-2"},
		Barcodes: []string{"AACCGG", "TTGGCC"},
	}

	prefix := filepath.Join(t.TempDir(), "sample.")
	paths, err := m.Write(prefix)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := Read(paths.Matrix, paths.Features, paths.Barcodes)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if !reflect.DeepEqual(got.Features, m.Features) {
		t.Errorf("Features = %v, want %v", got.Features, m.Features)
	}
	if !reflect.DeepEqual(got.Barcodes, m.Barcodes) {
		t.Errorf("Barcodes = %v, want %v", got.Barcodes, m.Barcodes)
	}
	if !reflect.DeepEqual(sortedEntries(got.Entries), sortedEntries(m.Entries)) {
		t.Errorf("Entries = %v, want %v", got.Entries, m.Entries)
	}
}

func TestWriteFormat(t *testing.T) {
	m := &Matrix{
		Entries:  []Entry{{Feature: "F2", Barcode: "b1", Count: 7}},
		Features: []string{"F1", "F2"},
		Barcodes: []string{"b1"},
	}

	prefix := filepath.Join(t.TempDir(), "out.")
	paths, err := m.Write(prefix)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(paths.Matrix)
	if err != nil {
		t.Fatal(err)
	}
	want := "%%MatrixMarket matrix coordinate integer general\n%\n2 1 1\n2 1 7\n"
	if string(data) != want {
		t.Errorf("matrix file = %q, want %q", data, want)
	}
}

func TestWriteInvalidMatrix(t *testing.T) {
	m := validMatrix()
	m.Features = append(m.Features, "F1")

	_, err := m.Write(filepath.Join(t.TempDir(), "bad."))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Write() = %v, want ErrValidation", err)
	}
}

func TestReadIndexOutOfRange(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.mtx")
	featuresPath := filepath.Join(dir, "features.tsv")
	barcodesPath := filepath.Join(dir, "barcodes.tsv")

	writeFile(t, matrixPath, "%%MatrixMarket matrix coordinate integer general\n%\n1 1 1\n5 1 3\n")
	writeFile(t, featuresPath, "F1\n")
	writeFile(t, barcodesPath, "b1\n")

	_, err := Read(matrixPath, featuresPath, barcodesPath)
	if !errors.Is(err, ErrLookup) {
		t.Errorf("Read() = %v, want ErrLookup", err)
	}
}

func TestReadMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.mtx")
	featuresPath := filepath.Join(dir, "features.tsv")
	barcodesPath := filepath.Join(dir, "barcodes.tsv")

	writeFile(t, matrixPath, "%%MatrixMarket matrix coordinate integer general\n%\n1 1 1\n1 1\n")
	writeFile(t, featuresPath, "F1\n")
	writeFile(t, barcodesPath, "b1\n")

	_, err := Read(matrixPath, featuresPath, barcodesPath)
	if !errors.Is(err, ErrFormat) {
		t.Errorf("Read() = %v, want ErrFormat", err)
	}
}

func TestReadCompositeIdentifiers(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.mtx")
	featuresPath := filepath.Join(dir, "features.tsv")
	barcodesPath := filepath.Join(dir, "barcodes.tsv")

	// Tab-separated sub-fields form one composite identifier per line.
	writeFile(t, matrixPath, "%%MatrixMarket matrix coordinate integer general\n%\n1 1 1\n1 1 4\n")
	writeFile(t, featuresPath, "ENSG0001\tGENE1\tGene Expression\n")
	writeFile(t, barcodesPath, "AACCGG-1\n")

	m, err := Read(matrixPath, featuresPath, barcodesPath)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	want := "ENSG0001\tGENE1\tGene Expression"
	if m.Features[0] != want {
		t.Errorf("Features[0] = %q, want %q", m.Features[0], want)
	}
	if m.Entries[0].Feature != want {
		t.Errorf("Entries[0].Feature = %q, want %q", m.Entries[0].Feature, want)
	}
}

func TestReadGzipInputs(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.mtx.gz")
	featuresPath := filepath.Join(dir, "features.tsv")
	barcodesPath := filepath.Join(dir, "barcodes.tsv")

	f, err := os.Create(matrixPath)
	if err != nil {
		t.Fatal(err)
	}
	gzw := gzip.NewWriter(f)
	if _, err := gzw.Write([]byte("%%MatrixMarket matrix coordinate integer general\n%\n1 1 1\n1 1 9\n")); err != nil {
		t.Fatal(err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, featuresPath, "F1\n")
	writeFile(t, barcodesPath, "b1\n")

	m, err := Read(matrixPath, featuresPath, barcodesPath)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(m.Entries) != 1 || m.Entries[0].Count != 9 {
		t.Errorf("Entries = %v, want one entry with count 9", m.Entries)
	}
}

func TestReadSkipsExactlyThreeHeaderLines(t *testing.T) {
	dir := t.TempDir()
	matrixPath := filepath.Join(dir, "matrix.mtx")
	featuresPath := filepath.Join(dir, "features.tsv")
	barcodesPath := filepath.Join(dir, "barcodes.tsv")

	// Header content is ignored; only the line count matters.
	header := strings.Join([]string{"% one", "% two", "% dims placeholder"}, "\n")
	writeFile(t, matrixPath, header+"\n1 1 2\n")
	writeFile(t, featuresPath, "F1\n")
	writeFile(t, barcodesPath, "b1\n")

	m, err := Read(matrixPath, featuresPath, barcodesPath)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(m.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(m.Entries))
	}
}
