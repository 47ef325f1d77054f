package validate

import (
	"errors"
	"fmt"
	"math"

	"github.com/k2shbwi/k2sh/pkg/codec"
	"github.com/k2shbwi/k2sh/pkg/container"
	"github.com/k2shbwi/k2sh/pkg/document"
)

// Finding codes. Structural codes mirror the container format's error
// taxonomy; semantic codes are domain rules over a decoded container.
const (
	CodeBadMagic           = "bad_magic"
	CodeUnsupportedVersion = "unsupported_version"
	CodeTruncatedInput     = "truncated_input"
	CodeLengthMismatch     = "length_mismatch"
	CodeChecksumMismatch   = "checksum_mismatch"
	CodeTrailingData       = "trailing_data"
	CodeDuplicateKey       = "duplicate_metadata_key"
	CodeInvalidUTF8        = "invalid_utf8"
	CodeStructural         = "structural" // fallback for unclassified decode failures

	CodeUnknownKind       = "unknown_payload_kind"
	CodeMissingMetadata   = "missing_metadata"
	CodePayloadSize       = "payload_size"
	CodeMalformedPayload  = "malformed_payload"
	CodeDimensionMismatch = "dimension_mismatch"
)

// Kind-specific payload size bounds. A raster payload smaller than its fixed
// header or larger than maxPayloadBytes is implausible; same ceiling for
// vector scenes.
const (
	minRasterPayload = 12
	minVectorPayload = 4
	maxPayloadBytes  = 256 << 20
)

// Finding is one validation problem: a stable code, a human-readable
// message, and the field it concerns.
type Finding struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// Report is the outcome of validating one byte buffer. Findings keep the
// order in which checks run, so reports are comparable across runs.
type Report struct {
	OK       bool      `json:"ok"`
	Findings []Finding `json:"findings,omitempty"`
}

// Validate runs the two validation passes over data: structural (the bytes
// conform to the container grammar, checksum included) and, only when that
// passes, semantic (domain rules for the declared payload kind). Input
// problems are reported, never returned as errors, and validation is
// idempotent and side-effect free.
func Validate(data []byte) *Report {
	c, err := container.Decode(data)
	if err != nil {
		f := structuralFinding(err)
		return &Report{OK: false, Findings: []Finding{f}}
	}

	findings := semantic(c)
	return &Report{OK: len(findings) == 0, Findings: findings}
}

// structuralFinding maps a decode failure onto a stable finding code.
func structuralFinding(err error) Finding {
	f := Finding{Message: err.Error(), Field: "container"}
	switch {
	case errors.Is(err, container.ErrBadMagic):
		f.Code, f.Field = CodeBadMagic, "magic"
	case errors.Is(err, container.ErrUnsupportedVersion):
		f.Code, f.Field = CodeUnsupportedVersion, "version"
	case errors.Is(err, container.ErrChecksumMismatch):
		f.Code, f.Field = CodeChecksumMismatch, "checksum"
	case errors.Is(err, container.ErrTrailingData):
		f.Code = CodeTrailingData
	case errors.Is(err, container.ErrDuplicateKey):
		f.Code, f.Field = CodeDuplicateKey, "metadata"
	case errors.Is(err, codec.ErrInvalidUTF8):
		f.Code, f.Field = CodeInvalidUTF8, "metadata"
	case errors.Is(err, codec.ErrTruncatedInput):
		f.Code = CodeTruncatedInput
	case errors.Is(err, codec.ErrLengthMismatch):
		f.Code = CodeLengthMismatch
	default:
		f.Code = CodeStructural
	}
	return f
}

// semantic checks domain rules over a structurally sound container.
func semantic(c *container.Container) []Finding {
	var findings []Finding

	if _, ok := c.Meta(document.FormatVersionKey); !ok {
		findings = append(findings, Finding{
			Code:    CodeMissingMetadata,
			Message: fmt.Sprintf("required metadata key %q is absent", document.FormatVersionKey),
			Field:   "metadata." + document.FormatVersionKey,
		})
	}

	switch document.Kind(c.PayloadKind) {
	case document.KindRasterImage:
		findings = append(findings, semanticRaster(c.Payload)...)
	case document.KindVectorScene:
		findings = append(findings, semanticVector(c.Payload)...)
	default:
		findings = append(findings, Finding{
			Code:    CodeUnknownKind,
			Message: fmt.Sprintf("payload kind %d has no semantic rules", c.PayloadKind),
			Field:   "payload_kind",
		})
	}

	return findings
}

func semanticRaster(payload []byte) []Finding {
	if len(payload) < minRasterPayload || len(payload) > maxPayloadBytes {
		return []Finding{{
			Code:    CodePayloadSize,
			Message: fmt.Sprintf("raster payload of %d bytes outside [%d, %d]", len(payload), minRasterPayload, maxPayloadBytes),
			Field:   "payload",
		}}
	}

	var img struct{ w, h, ch uint32 }
	img.w, _, _ = codec.ReadUint32(payload, 0)
	img.h, _, _ = codec.ReadUint32(payload, 4)
	img.ch, _, _ = codec.ReadUint32(payload, 8)

	var findings []Finding
	if img.w == 0 || img.h == 0 || img.ch == 0 {
		findings = append(findings, Finding{
			Code:    CodeDimensionMismatch,
			Message: fmt.Sprintf("raster dimensions %dx%dx%d contain a zero", img.w, img.h, img.ch),
			Field:   "payload.dimensions",
		})
	}

	// The product of three u32 values can exceed 64 bits; saturate instead
	// of wrapping so overflowing dimensions never match a real payload.
	declared := uint64(img.w) * uint64(img.h)
	if img.ch != 0 && declared > math.MaxUint64/uint64(img.ch) {
		declared = math.MaxUint64
	} else {
		declared *= uint64(img.ch)
	}
	if got := uint64(len(payload) - minRasterPayload); declared != got {
		findings = append(findings, Finding{
			Code:    CodeDimensionMismatch,
			Message: fmt.Sprintf("raster %dx%dx%d declares %d pixel bytes, payload carries %d", img.w, img.h, img.ch, declared, got),
			Field:   "payload.pixels",
		})
	}
	return findings
}

func semanticVector(payload []byte) []Finding {
	if len(payload) < minVectorPayload || len(payload) > maxPayloadBytes {
		return []Finding{{
			Code:    CodePayloadSize,
			Message: fmt.Sprintf("vector payload of %d bytes outside [%d, %d]", len(payload), minVectorPayload, maxPayloadBytes),
			Field:   "payload",
		}}
	}

	// Reuse the kind's own unmarshal as the consistency oracle.
	if _, err := document.FromContainer(container.New(uint32(document.KindVectorScene), payload)); err != nil {
		return []Finding{{
			Code:    CodeMalformedPayload,
			Message: err.Error(),
			Field:   "payload.strokes",
		}}
	}
	return nil
}
