package mtx

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParquetRoundTrip(t *testing.T) {
	m := &Matrix{
		Entries: []Entry{
			{Feature: "F1", Barcode: "b1", Count: 5},
			{Feature: "F2", Barcode: "b2", Count: 3},
		},
		Features: []string{"F1", "F2"},
		Barcodes: []string{"b1", "b2"},
	}

	dir := t.TempDir()
	parquetPath := filepath.Join(dir, "matrix.parquet")
	if err := m.WriteParquet(parquetPath); err != nil {
		t.Fatalf("WriteParquet() error: %v", err)
	}

	// Identifier universes travel in the usual tsv files.
	writeFile(t, filepath.Join(dir, "features.tsv"), "F1\nF2\n")
	writeFile(t, filepath.Join(dir, "barcodes.tsv"), "b1\nb2\n")

	got, err := ReadParquet(parquetPath, filepath.Join(dir, "features.tsv"), filepath.Join(dir, "barcodes.tsv"))
	if err != nil {
		t.Fatalf("ReadParquet() error: %v", err)
	}

	if !reflect.DeepEqual(got.Entries, m.Entries) {
		t.Errorf("Entries = %v, want %v", got.Entries, m.Entries)
	}
	if !reflect.DeepEqual(got.Features, m.Features) {
		t.Errorf("Features = %v, want %v", got.Features, m.Features)
	}
}

func TestReadParquetValidates(t *testing.T) {
	m := &Matrix{
		Entries:  []Entry{{Feature: "F1", Barcode: "b1", Count: 5}},
		Features: []string{"F1"},
		Barcodes: []string{"b1"},
	}

	dir := t.TempDir()
	parquetPath := filepath.Join(dir, "matrix.parquet")
	if err := m.WriteParquet(parquetPath); err != nil {
		t.Fatalf("WriteParquet() error: %v", err)
	}

	// Feature list missing F1: the loaded triple must fail validation.
	writeFile(t, filepath.Join(dir, "features.tsv"), "F9\n")
	writeFile(t, filepath.Join(dir, "barcodes.tsv"), "b1\n")

	_, err := ReadParquet(parquetPath, filepath.Join(dir, "features.tsv"), filepath.Join(dir, "barcodes.tsv"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("ReadParquet() = %v, want ErrValidation", err)
	}
}

func TestWriteParquetInvalidMatrix(t *testing.T) {
	m := validMatrix()
	m.Barcodes = append(m.Barcodes, "b1")

	err := m.WriteParquet(filepath.Join(t.TempDir(), "bad.parquet"))
	if !errors.Is(err, ErrValidation) {
		t.Errorf("WriteParquet() = %v, want ErrValidation", err)
	}
}
