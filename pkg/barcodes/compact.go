package barcodes

import (
	"fmt"
	"hash/fnv"

	"github.com/relab/bbhash"
)

// CompactTable is a minimal-perfect-hash build of the pair table. The
// reference barcode lists run to 737K pairs; holding them in two Go
// maps costs several times the string payload, while an MPHF needs a
// few bits per key plus one fingerprint and one paired string per
// entry. Fingerprints catch lookups of barcodes outside the key set,
// which an MPHF would otherwise map to an arbitrary slot.
type CompactTable struct {
	atac compactSide
	rna  compactSide
}

// compactSide resolves one translation direction.
type compactSide struct {
	mph *bbhash.BBHash2

	// fingerprints[pos] verifies the barcode that hashes to slot pos.
	fingerprints []uint64

	// paired[pos] is the translated barcode for slot pos.
	paired []string
}

// NewCompactTable builds a CompactTable from pairs. Duplicates on
// either side are rejected the same way NewTable rejects them.
func NewCompactTable(pairs []Pair) (*CompactTable, error) {
	// NewTable's duplicate checks guard the bijection before the more
	// expensive MPHF construction runs.
	if _, err := NewTable(pairs); err != nil {
		return nil, err
	}

	atac, err := buildSide(pairs, ATACToRNA)
	if err != nil {
		return nil, err
	}
	rna, err := buildSide(pairs, RNAToATAC)
	if err != nil {
		return nil, err
	}

	return &CompactTable{atac: atac, rna: rna}, nil
}

func buildSide(pairs []Pair, dir Direction) (compactSide, error) {
	keys := make([]uint64, len(pairs))
	for i, p := range pairs {
		keys[i] = hashBarcode(sourceOf(p, dir))
	}

	// Gamma 2.0 trades a little space for faster construction.
	mph, err := bbhash.New(keys, bbhash.Gamma(2.0))
	if err != nil {
		return compactSide{}, fmt.Errorf("build MPHF (%s): %w", dir, err)
	}

	side := compactSide{
		mph:          mph,
		fingerprints: make([]uint64, len(pairs)),
		paired:       make([]string, len(pairs)),
	}
	for _, p := range pairs {
		src := sourceOf(p, dir)
		hashVal := mph.Find(hashBarcode(src))
		if hashVal == 0 {
			return compactSide{}, fmt.Errorf("MPHF lookup failed for %q", src)
		}
		pos := hashVal - 1 // Find is 1-indexed
		side.fingerprints[pos] = fingerprintBarcode(src)
		side.paired[pos] = targetOf(p, dir)
	}

	return side, nil
}

func sourceOf(p Pair, dir Direction) string {
	if dir == RNAToATAC {
		return p.RNA
	}
	return p.ATAC
}

func targetOf(p Pair, dir Direction) string {
	if dir == RNAToATAC {
		return p.ATAC
	}
	return p.RNA
}

// TranslateOne converts a single barcode.
func (t *CompactTable) TranslateOne(barcode string, dir Direction) (string, error) {
	side := &t.atac
	if dir == RNAToATAC {
		side = &t.rna
	}

	hashVal := side.mph.Find(hashBarcode(barcode))
	if hashVal == 0 {
		return "", fmt.Errorf("%w: %q (%s)", ErrNotFound, barcode, dir)
	}
	pos := hashVal - 1
	if pos >= uint64(len(side.fingerprints)) || side.fingerprints[pos] != fingerprintBarcode(barcode) {
		return "", fmt.Errorf("%w: %q (%s)", ErrNotFound, barcode, dir)
	}
	return side.paired[pos], nil
}

// TranslateMany converts barcodes one by one, failing on the first
// absent identifier.
func (t *CompactTable) TranslateMany(barcodes []string, dir Direction) ([]string, error) {
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

// hashBarcode produces the MPHF key for a barcode.
func hashBarcode(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// fingerprintBarcode uses a different hash function than hashBarcode to
// keep the false-accept probability low.
func fingerprintBarcode(s string) uint64 {
	h := fnv.New64()
	h.Write([]byte(s))
	return h.Sum64()
}
