package mtx

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/eunmann/snmtx/pkg/fileutil"
)

// parquetEntry is the Parquet row schema for the coordinate table.
// Identifier columns are dictionary-encoded since features and barcodes
// repeat heavily across records.
type parquetEntry struct {
	Feature string `parquet:"feature,dict"`
	Barcode string `parquet:"barcode,dict"`
	Count   uint64 `parquet:"count"`
}

// WriteParquet validates the matrix and writes its coordinate table as
// a Parquet file at path, replacing it atomically (tmp file + rename).
// The feature and barcode universes are not stored in the Parquet file;
// pair it with identifier files written by Write, as ReadParquet does.
func (m *Matrix) WriteParquet(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}

	rows := make([]parquetEntry, len(m.Entries))
	for i, e := range m.Entries {
		rows[i] = parquetEntry{Feature: e.Feature, Barcode: e.Barcode, Count: e.Count}
	}

	return fileutil.WriteTmpThenMove(path, func(tmpPath string) error {
		if err := parquet.WriteFile(tmpPath, rows); err != nil {
			return fmt.Errorf("write parquet %s: %w", path, err)
		}
		return nil
	})
}

// ReadParquet loads a matrix triple from a Parquet coordinate table and
// the usual features/barcodes identifier files. The result is validated
// before it is returned, so a record naming an identifier missing from
// the lists fails the same way the text reader does.
func ReadParquet(parquetPath, featuresPath, barcodesPath string) (*Matrix, error) {
	features, err := readIdentifiers(featuresPath)
	if err != nil {
		return nil, err
	}
	barcodes, err := readIdentifiers(barcodesPath)
	if err != nil {
		return nil, err
	}

	rows, err := parquet.ReadFile[parquetEntry](parquetPath)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", parquetPath, err)
	}

	m := &Matrix{
		Entries:  make([]Entry, len(rows)),
		Features: features,
		Barcodes: barcodes,
	}
	for i, r := range rows {
		m.Entries[i] = Entry{Feature: r.Feature, Barcode: r.Barcode, Count: r.Count}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
