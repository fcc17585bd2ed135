package services

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/normalization"
	"github.com/yungbote/labelsense-backend/internal/types"
)

const (
	// cacheKeyVersion is baked into every key; bumping it invalidates the
	// whole per-user cache at once.
	cacheKeyVersion = "v1"

	// digestBytes of sha256 kept for hashed modalities. 16 bytes (32 hex
	// chars) keeps keys compact in the index.
	digestBytes = 16

	// maxSummaryLen bounds the human-readable input summary stored next
	// to cache rows and ledger entries.
	maxSummaryLen = 120
)

// ScanKeyService derives the deterministic cache key for a raw scan input.
// Derivation never fails: malformed input degrades to a raw-string fallback
// normalization, logged at debug level only.
type ScanKeyService interface {
	Derive(ownerID uuid.UUID, modality types.ScanModality, raw []byte) string
	Summarize(modality types.ScanModality, raw []byte) string
	GatewayInput(modality types.ScanModality, raw []byte) string
}

type scanKeyService struct {
	log *logger.Logger
}

func NewScanKeyService(baseLog *logger.Logger) ScanKeyService {
	return &scanKeyService{log: baseLog.With("service", "ScanKeyService")}
}

// Derive returns "scan:v1:<owner>:<modality>:<normalized-or-digest>". The
// owner and modality segments guarantee that identical raw bytes can never
// collide across users or across input modalities.
func (s *scanKeyService) Derive(ownerID uuid.UUID, modality types.ScanModality, raw []byte) string {
	var part string
	switch modality {
	case types.ModalityBarcode:
		normalized, fellBack := normalization.ParseBarcode(string(raw))
		if fellBack {
			s.log.Debug("Barcode normalization fell back to raw input", "owner_id", ownerID)
		}
		part = normalized
	case types.ModalityURL:
		normalized, fellBack := normalization.ParseProductURL(string(raw))
		if fellBack {
			s.log.Debug("URL normalization fell back to raw input", "owner_id", ownerID)
		}
		part = normalized
	case types.ModalityText:
		collapsed := normalization.CollapseWhitespace(strings.ToLower(string(raw)))
		part = digest([]byte(collapsed))
	case types.ModalityImage:
		// Raw encoded bytes only: pixel-identical uploads hit the
		// cache, near-duplicate images intentionally do not.
		part = digest(raw)
	default:
		part = digest(raw)
	}
	return fmt.Sprintf("scan:%s:%s:%s:%s", cacheKeyVersion, ownerID, modality, part)
}

// Summarize produces the bounded human-readable description stored alongside
// cache rows and ledger entries. Text and URL inputs are truncated so the
// full raw payload is never persisted twice.
func (s *scanKeyService) Summarize(modality types.ScanModality, raw []byte) string {
	switch modality {
	case types.ModalityBarcode:
		normalized, _ := normalization.ParseBarcode(string(raw))
		return truncate("barcode "+normalized, maxSummaryLen)
	case types.ModalityURL:
		normalized, _ := normalization.ParseProductURL(string(raw))
		return truncate(normalized, maxSummaryLen)
	case types.ModalityText:
		collapsed := normalization.CollapseWhitespace(string(raw))
		return truncate(collapsed, maxSummaryLen)
	case types.ModalityImage:
		return fmt.Sprintf("image upload (%d bytes)", len(raw))
	default:
		return truncate(string(raw), maxSummaryLen)
	}
}

// GatewayInput is the full normalized form handed to the generation call.
// Unlike Summarize it is never truncated: the artifact is generated from the
// whole input. Image payloads go out base64-encoded.
func (s *scanKeyService) GatewayInput(modality types.ScanModality, raw []byte) string {
	switch modality {
	case types.ModalityBarcode:
		normalized, _ := normalization.ParseBarcode(string(raw))
		return normalized
	case types.ModalityURL:
		normalized, _ := normalization.ParseProductURL(string(raw))
		return normalized
	case types.ModalityText:
		return normalization.CollapseWhitespace(string(raw))
	case types.ModalityImage:
		return base64.StdEncoding.EncodeToString(raw)
	default:
		return string(raw)
	}
}

func digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:digestBytes])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back off to a rune boundary so the cut never leaves invalid UTF-8.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
