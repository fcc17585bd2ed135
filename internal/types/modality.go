package types

import (
	"fmt"
	"strings"
)

// ScanModality identifies how a scan input was captured. It selects the
// normalization rules used to derive the cache key.
type ScanModality string

const (
	ModalityBarcode ScanModality = "barcode"
	ModalityURL     ScanModality = "url"
	ModalityText    ScanModality = "text"
	ModalityImage   ScanModality = "image"

	// ModalityCatalog marks ledger entries for shared catalog analysis
	// lookups, which arrive by product id rather than raw input. It is
	// never a valid request modality.
	ModalityCatalog ScanModality = "catalog"
)

func ParseScanModality(raw string) (ScanModality, error) {
	switch ScanModality(strings.ToLower(strings.TrimSpace(raw))) {
	case ModalityBarcode:
		return ModalityBarcode, nil
	case ModalityURL:
		return ModalityURL, nil
	case ModalityText:
		return ModalityText, nil
	case ModalityImage:
		return ModalityImage, nil
	default:
		return "", fmt.Errorf("unknown scan modality %q", raw)
	}
}
