package services

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/types"
)

func TestDeriveDeterministic(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())
	owner := uuid.New()

	inputs := map[types.ScanModality][]byte{
		types.ModalityBarcode: []byte("4006381333931"),
		types.ModalityURL:     []byte("https://shop.example.com/item/123"),
		types.ModalityText:    []byte("water, sugar, citric acid"),
		types.ModalityImage:   {0x89, 0x50, 0x4e, 0x47, 0x01, 0x02},
	}
	for modality, raw := range inputs {
		first := svc.Derive(owner, modality, raw)
		second := svc.Derive(owner, modality, raw)
		if first != second {
			t.Fatalf("%s key not deterministic: %q != %q", modality, first, second)
		}
		if !strings.HasPrefix(first, "scan:v1:"+owner.String()+":"+string(modality)+":") {
			t.Fatalf("%s key has unexpected shape: %q", modality, first)
		}
	}
}

func TestDeriveScopesByOwner(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())
	raw := []byte("4006381333931")

	a := svc.Derive(uuid.New(), types.ModalityBarcode, raw)
	b := svc.Derive(uuid.New(), types.ModalityBarcode, raw)
	if a == b {
		t.Fatalf("same input for different owners produced the same key: %q", a)
	}
}

func TestDeriveScopesByModality(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())
	owner := uuid.New()
	raw := []byte("4006381333931")

	text := svc.Derive(owner, types.ModalityText, raw)
	barcode := svc.Derive(owner, types.ModalityBarcode, raw)
	if text == barcode {
		t.Fatalf("identical bytes collided across modalities: %q", text)
	}
}

func TestDeriveURLTrackingVariants(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())
	owner := uuid.New()

	plain := svc.Derive(owner, types.ModalityURL, []byte("https://shop.example.com/item/123?color=red"))
	tracked := svc.Derive(owner, types.ModalityURL, []byte("HTTPS://SHOP.example.com/item/123?color=red&utm_source=mail&gclid=xyz"))
	if plain != tracked {
		t.Fatalf("tracking variants derived different keys:\n%q\n%q", plain, tracked)
	}

	other := svc.Derive(owner, types.ModalityURL, []byte("https://shop.example.com/item/124?color=red"))
	if plain == other {
		t.Fatalf("different product pages derived the same key: %q", plain)
	}
}

func TestDeriveTextCaseAndWhitespace(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())
	owner := uuid.New()

	a := svc.Derive(owner, types.ModalityText, []byte("Water,  Sugar,\nCitric Acid"))
	b := svc.Derive(owner, types.ModalityText, []byte("water, sugar, citric acid"))
	if a != b {
		t.Fatalf("case/whitespace variants derived different keys:\n%q\n%q", a, b)
	}
}

func TestDeriveImageExactBytesOnly(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())
	owner := uuid.New()

	img := []byte{0x89, 0x50, 0x4e, 0x47, 0x01, 0x02}
	same := svc.Derive(owner, types.ModalityImage, append([]byte(nil), img...))
	if svc.Derive(owner, types.ModalityImage, img) != same {
		t.Fatal("identical image bytes derived different keys")
	}

	tweaked := append([]byte(nil), img...)
	tweaked[len(tweaked)-1] ^= 0x01
	if svc.Derive(owner, types.ModalityImage, tweaked) == same {
		t.Fatal("single-bit image change did not change the key")
	}
}

func TestSummarizeBounded(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())

	long := strings.Repeat("ingredient, ", 40)
	got := svc.Summarize(types.ModalityText, []byte(long))
	if len(got) > maxSummaryLen {
		t.Fatalf("summary exceeds bound: %d > %d", len(got), maxSummaryLen)
	}

	img := svc.Summarize(types.ModalityImage, make([]byte, 2048))
	if img != "image upload (2048 bytes)" {
		t.Fatalf("unexpected image summary: %q", img)
	}
}

func TestSummarizeTruncatesOnRuneBoundary(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())

	// Multi-byte ingredient text sized so a byte cut would land inside a
	// rune.
	long := "x " + strings.Repeat("maté ", 60)
	got := svc.Summarize(types.ModalityText, []byte(long))
	if len(got) > maxSummaryLen {
		t.Fatalf("summary exceeds bound: %d > %d", len(got), maxSummaryLen)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated summary is not valid UTF-8: %q", got)
	}
}

func TestGatewayInputNotTruncated(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())

	long := strings.Repeat("oat flour, cane sugar, palm oil, ", 20)
	got := svc.GatewayInput(types.ModalityText, []byte(long))
	if len(got) < len(long)-1 {
		t.Fatalf("gateway input truncated: %d bytes of %d", len(got), len(long))
	}
	if !strings.HasSuffix(got, "palm oil,") {
		t.Fatalf("gateway input lost its tail: %q", got[len(got)-30:])
	}
}

func TestGatewayInputEncodesImage(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())

	img := []byte{0x89, 0x50, 0x4e, 0x47, 0x01, 0x02}
	got := svc.GatewayInput(types.ModalityImage, img)
	decoded, err := base64.StdEncoding.DecodeString(got)
	if err != nil {
		t.Fatalf("gateway image input not base64: %v", err)
	}
	if !bytes.Equal(decoded, img) {
		t.Fatalf("gateway image payload corrupted: %x", decoded)
	}
}

func TestGatewayInputNormalizes(t *testing.T) {
	svc := NewScanKeyService(logger.NewNop())

	if got := svc.GatewayInput(types.ModalityBarcode, []byte(" 4 006381-333931 ")); got != "4006381333931" {
		t.Fatalf("barcode gateway input=%q", got)
	}
	got := svc.GatewayInput(types.ModalityURL, []byte("https://shop.example.com/item/9?utm_source=mail&color=red"))
	if got != "https://shop.example.com/item/9?color=red" {
		t.Fatalf("url gateway input=%q", got)
	}
}
