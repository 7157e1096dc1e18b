package mtx

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// matrixHeaderLines is the number of leading lines in a coordinate
// matrix file before the first record: two "%" comment lines plus the
// dimensions line.
const matrixHeaderLines = 3

// openText opens path for line-oriented reading, transparently
// decompressing files with a .gz suffix. The returned closer releases
// both the gzip reader and the underlying file.
func openText(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, f, nil
	}
	gzr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open gzip %s: %w", path, err)
	}
	return gzr, multiCloser{gzr, f}, nil
}

// multiCloser closes in order (gzip reader before the file beneath it).
type multiCloser []io.Closer

func (mc multiCloser) Close() error {
	var firstErr error
	for _, c := range mc {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// readIdentifiers reads one identifier per line from a features or
// barcodes file. Tab-separated sub-fields are kept joined by their tab
// characters, forming one composite identifier per line.
func readIdentifiers(path string) ([]string, error) {
	reader, closer, err := openText(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var ids []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ids = append(ids, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ids, nil
}

// parseRecord parses one "feature_index barcode_index count" line.
func parseRecord(line string) (featureIdx, barcodeIdx int, count uint64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: expected 3 fields, got %d in %q", ErrFormat, len(fields), line)
	}
	featureIdx, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: feature index %q: %v", ErrFormat, fields[0], err)
	}
	barcodeIdx, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: barcode index %q: %v", ErrFormat, fields[1], err)
	}
	count, err = strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: count %q: %v", ErrFormat, fields[2], err)
	}
	return featureIdx, barcodeIdx, count, nil
}

// Read loads a matrix triple from a coordinate matrix file and its
// accompanying features and barcodes files. The matrix file carries a
// 3-line header (skipped), then whitespace-separated records of
// 1-based (feature_index, barcode_index, count) where row i of the
// features/barcodes file defines index i. The result is validated
// before it is returned. An index with no corresponding identifier row
// is a lookup error.
func Read(matrixPath, featuresPath, barcodesPath string) (*Matrix, error) {
	features, err := readIdentifiers(featuresPath)
	if err != nil {
		return nil, err
	}
	barcodes, err := readIdentifiers(barcodesPath)
	if err != nil {
		return nil, err
	}

	reader, closer, err := openText(matrixPath)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	m := &Matrix{Features: features, Barcodes: barcodes}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= matrixHeaderLines {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
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
		m.Entries = append(m.Entries, Entry{
			Feature: features[fi-1],
			Barcode: barcodes[bi-1],
			Count:   count,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", matrixPath, err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
