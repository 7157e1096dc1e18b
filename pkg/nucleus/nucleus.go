// Package nucleus parses and reconstructs structured nucleus
// identifiers of the form {sample}-{genome}-{modality}-{barcode} and
// converts them between the ATAC and RNA modalities.
package nucleus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eunmann/snmtx/pkg/barcodes"
)

// Modality names as they appear in nucleus identifiers.
const (
	ModalityATAC = "ATAC"
	ModalityRNA  = "RNA"
)

var (
	// ErrFieldCount indicates an identifier that does not split into
	// exactly four "-"-delimited fields.
	ErrFieldCount = errors.New("nucleus identifier must have 4 fields")
	// ErrModality indicates a conversion applied to an identifier of
	// the wrong modality.
	ErrModality = errors.New("unexpected modality")
)

// Nucleus is a parsed nucleus identifier. None of the fields may
// contain the "-" delimiter.
type Nucleus struct {
	Sample   string
	Genome   string
	Modality string
	Barcode  string
}

// Parse splits a {sample}-{genome}-{modality}-{barcode} identifier.
func Parse(id string) (Nucleus, error) {
	fields := strings.Split(id, "-")
	if len(fields) != 4 {
		return Nucleus{}, fmt.Errorf("%w: %q has %d", ErrFieldCount, id, len(fields))
	}
	return Nucleus{
		Sample:   fields[0],
		Genome:   fields[1],
		Modality: fields[2],
		Barcode:  fields[3],
	}, nil
}

// String reconstructs the delimited identifier.
func (n Nucleus) String() string {
	return n.Sample + "-" + n.Genome + "-" + n.Modality + "-" + n.Barcode
}

// ToRNA returns the RNA-modality identifier for an ATAC nucleus,
// translating the barcode through t.
func (n Nucleus) ToRNA(t barcodes.Translator) (Nucleus, error) {
	if n.Modality != ModalityATAC {
		return Nucleus{}, fmt.Errorf("%w: %s is not %s", ErrModality, n.Modality, ModalityATAC)
	}
	b, err := t.TranslateOne(n.Barcode, barcodes.ATACToRNA)
	if err != nil {
		return Nucleus{}, err
	}
	n.Modality = ModalityRNA
	n.Barcode = b
	return n, nil
}

// ToATAC returns the ATAC-modality identifier for an RNA nucleus,
// translating the barcode through t.
func (n Nucleus) ToATAC(t barcodes.Translator) (Nucleus, error) {
	if n.Modality != ModalityRNA {
		return Nucleus{}, fmt.Errorf("%w: %s is not %s", ErrModality, n.Modality, ModalityRNA)
	}
	b, err := t.TranslateOne(n.Barcode, barcodes.RNAToATAC)
	if err != nil {
		return Nucleus{}, err
	}
	n.Modality = ModalityATAC
	n.Barcode = b
	return n, nil
}

// ATACToRNA converts a single ATAC nucleus identifier string to its RNA
// counterpart.
func ATACToRNA(id string, t barcodes.Translator) (string, error) {
	n, err := Parse(id)
	if err != nil {
		return "", err
	}
	converted, err := n.ToRNA(t)
	if err != nil {
		return "", fmt.Errorf("convert %q: %w", id, err)
	}
	return converted.String(), nil
}

// RNAToATAC converts a single RNA nucleus identifier string to its ATAC
// counterpart.
func RNAToATAC(id string, t barcodes.Translator) (string, error) {
	n, err := Parse(id)
	if err != nil {
		return "", err
	}
	converted, err := n.ToATAC(t)
	if err != nil {
		return "", fmt.Errorf("convert %q: %w", id, err)
	}
	return converted.String(), nil
}

// ATACToRNAAll converts a slice of ATAC nucleus identifiers, failing on
// the first identifier that does not parse, has the wrong modality, or
// carries a barcode absent from the table.
func ATACToRNAAll(ids []string, t barcodes.Translator) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		converted, err := ATACToRNA(id, t)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

// RNAToATACAll converts a slice of RNA nucleus identifiers.
func RNAToATACAll(ids []string, t barcodes.Translator) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		converted, err := RNAToATAC(id, t)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
