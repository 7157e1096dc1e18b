// Package barcodes maps between the ATAC and RNA barcode namespaces of
// a multiome assay. The two namespaces identify the same physical
// nuclei via a fixed pairwise reference table (e.g. the 737K-arc-v1
// barcode lists), loaded explicitly by the caller rather than held as
// hidden process state.
package barcodes

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrNotFound indicates an identifier absent from the pair table.
	ErrNotFound = errors.New("barcode not in table")
	// ErrBadTable indicates a malformed pair table (duplicate entries
	// or mismatched file lengths).
	ErrBadTable = errors.New("invalid barcode table")
)

// Direction selects which way to translate.
type Direction int

const (
	// ATACToRNA translates an ATAC barcode to its paired RNA barcode.
	ATACToRNA Direction = iota
	// RNAToATAC translates an RNA barcode to its paired ATAC barcode.
	RNAToATAC
)

func (d Direction) String() string {
	switch d {
	case ATACToRNA:
		return "atac-to-rna"
	case RNAToATAC:
		return "rna-to-atac"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Pair is one row of the reference table: the same nucleus in both
// namespaces.
type Pair struct {
	ATAC string
	RNA  string
}

// Translator converts barcodes between the two namespaces. Both Table
// and CompactTable implement it.
type Translator interface {
	// TranslateOne converts a single barcode, failing with ErrNotFound
	// if it is absent from the table.
	TranslateOne(barcode string, dir Direction) (string, error)

	// TranslateMany converts a slice of barcodes, failing on the first
	// absent one.
	TranslateMany(barcodes []string, dir Direction) ([]string, error)
}

// Table is a bidirectional map over the barcode pair table.
type Table struct {
	atacToRNA map[string]string
	rnaToATAC map[string]string
}

// NewTable builds a Table from pairs. A barcode appearing twice on
// either side is rejected, since translation must stay a bijection.
func NewTable(pairs []Pair) (*Table, error) {
	t := &Table{
		atacToRNA: make(map[string]string, len(pairs)),
		rnaToATAC: make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		if _, dup := t.atacToRNA[p.ATAC]; dup {
			return nil, fmt.Errorf("%w: duplicate ATAC barcode %q", ErrBadTable, p.ATAC)
		}
		if _, dup := t.rnaToATAC[p.RNA]; dup {
			return nil, fmt.Errorf("%w: duplicate RNA barcode %q", ErrBadTable, p.RNA)
		}
		t.atacToRNA[p.ATAC] = p.RNA
		t.rnaToATAC[p.RNA] = p.ATAC
	}
	return t, nil
}

// LoadTable reads the pair table from two line-paired barcode list
// files (one barcode per line, line i of each file describing the same
// nucleus). Files with a .gz suffix are decompressed transparently.
func LoadTable(atacPath, rnaPath string) (*Table, error) {
	atac, err := readLines(atacPath)
	if err != nil {
		return nil, err
	}
	rna, err := readLines(rnaPath)
	if err != nil {
		return nil, err
	}
	if len(atac) != len(rna) {
		return nil, fmt.Errorf("%w: %s has %d barcodes, %s has %d", ErrBadTable, atacPath, len(atac), rnaPath, len(rna))
	}

	pairs := make([]Pair, len(atac))
	for i := range atac {
		pairs[i] = Pair{ATAC: atac[i], RNA: rna[i]}
	}
	return NewTable(pairs)
}

// Len returns the number of pairs in the table.
func (t *Table) Len() int {
	return len(t.atacToRNA)
}

// Pairs returns the table contents. Order is unspecified.
func (t *Table) Pairs() []Pair {
	pairs := make([]Pair, 0, len(t.atacToRNA))
	for atac, rna := range t.atacToRNA {
		pairs = append(pairs, Pair{ATAC: atac, RNA: rna})
	}
	return pairs
}

// TranslateOne converts a single barcode.
func (t *Table) TranslateOne(barcode string, dir Direction) (string, error) {
	m := t.atacToRNA
	if dir == RNAToATAC {
		m = t.rnaToATAC
	}
	out, ok := m[barcode]
	if !ok {
		return "", fmt.Errorf("%w: %q (%s)", ErrNotFound, barcode, dir)
	}
	return out, nil
}

// TranslateMany converts barcodes one by one, failing on the first
// absent identifier.
func (t *Table) TranslateMany(barcodes []string, dir Direction) ([]string, error) {
	out := make([]string, len(barcodes))
	for i, b := range barcodes {
		translated, err := t.TranslateOne(b, dir)
		if err != nil {
			return nil, err
		}
		out[i] = translated
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gzr.Close()
		reader = gzr
	}

	var lines []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
