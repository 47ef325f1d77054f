package validate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2shbwi/k2sh/pkg/container"
	"github.com/k2shbwi/k2sh/pkg/document"
)

func validRasterBytes(t *testing.T) []byte {
	t.Helper()
	doc := document.NewRaster(&document.RasterImage{
		Width:    2,
		Height:   2,
		Channels: 3,
		Pixels:   bytes.Repeat([]byte{0x01}, 12),
	})
	data, err := document.Encode(doc, map[string]string{"author": "alice"})
	require.NoError(t, err)
	return data
}

func TestValidateOK(t *testing.T) {
	report := Validate(validRasterBytes(t))

	assert.True(t, report.OK)
	assert.Empty(t, report.Findings)
}

func TestValidateStructural(t *testing.T) {
	data := validRasterBytes(t)

	testCases := []struct {
		name     string
		mutate   func([]byte) []byte
		wantCode string
	}{
		{
			name:     "bad magic",
			mutate:   func(d []byte) []byte { d[0] = 'Z'; return d },
			wantCode: CodeBadMagic,
		},
		{
			name:     "corrupted payload",
			mutate:   func(d []byte) []byte { d[len(d)-6] ^= 0xFF; return d },
			wantCode: CodeChecksumMismatch,
		},
		{
			name:     "truncated",
			mutate:   func(d []byte) []byte { return d[:7] },
			wantCode: CodeTruncatedInput,
		},
		{
			name:     "trailing data",
			mutate:   func(d []byte) []byte { return append(d, 0xAB) },
			wantCode: CodeTrailingData,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := Validate(tc.mutate(append([]byte(nil), data...)))

			require.False(t, report.OK)
			require.Len(t, report.Findings, 1)
			assert.Equal(t, tc.wantCode, report.Findings[0].Code)
			assert.NotEmpty(t, report.Findings[0].Message)
		})
	}
}

func TestValidateSemanticMissingMetadata(t *testing.T) {
	// A bare container without the facade's system metadata.
	c := container.New(uint32(document.KindRasterImage), append(
		[]byte{2, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0},
		bytes.Repeat([]byte{0x01}, 12)...,
	))
	data, err := container.Encode(c)
	require.NoError(t, err)

	report := Validate(data)

	require.False(t, report.OK)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeMissingMetadata, report.Findings[0].Code)
	assert.Equal(t, "metadata.format_version", report.Findings[0].Field)
}

func TestValidateSemanticDimensionMismatch(t *testing.T) {
	// Header declares 10x10x3 but only 5 pixel bytes follow.
	payload := append([]byte{10, 0, 0, 0, 10, 0, 0, 0, 3, 0, 0, 0}, 1, 2, 3, 4, 5)
	c := container.New(uint32(document.KindRasterImage), payload)
	c.SetMeta(document.FormatVersionKey, "1")
	data, err := container.Encode(c)
	require.NoError(t, err)

	report := Validate(data)

	require.False(t, report.OK)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeDimensionMismatch, report.Findings[0].Code)
}

func TestValidateSemanticDimensionOverflow(t *testing.T) {
	// 4194304 * 4194304 * 1048576 is exactly 2^64; a wrapping product
	// would declare zero pixel bytes and match the empty payload.
	payload := []byte{0, 0, 0x40, 0, 0, 0, 0x40, 0, 0, 0, 0x10, 0}
	c := container.New(uint32(document.KindRasterImage), payload)
	c.SetMeta(document.FormatVersionKey, "1")
	data, err := container.Encode(c)
	require.NoError(t, err)

	report := Validate(data)

	require.False(t, report.OK)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeDimensionMismatch, report.Findings[0].Code)
}

func TestValidateSemanticPayloadSize(t *testing.T) {
	c := container.New(uint32(document.KindRasterImage), []byte{1, 2})
	c.SetMeta(document.FormatVersionKey, "1")
	data, err := container.Encode(c)
	require.NoError(t, err)

	report := Validate(data)

	require.False(t, report.OK)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodePayloadSize, report.Findings[0].Code)
}

func TestValidateSemanticUnknownKind(t *testing.T) {
	c := container.New(77, []byte("whatever"))
	c.SetMeta(document.FormatVersionKey, "1")
	data, err := container.Encode(c)
	require.NoError(t, err)

	report := Validate(data)

	require.False(t, report.OK)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeUnknownKind, report.Findings[0].Code)
}

func TestValidateSemanticMalformedVector(t *testing.T) {
	// Stroke count says 3 but no strokes follow.
	c := container.New(uint32(document.KindVectorScene), []byte{3, 0, 0, 0})
	c.SetMeta(document.FormatVersionKey, "1")
	data, err := container.Encode(c)
	require.NoError(t, err)

	report := Validate(data)

	require.False(t, report.OK)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeMalformedPayload, report.Findings[0].Code)
}

func TestValidateFindingOrderAccumulates(t *testing.T) {
	// Missing format_version and a dimension mismatch at once: both reported,
	// metadata finding first.
	payload := append([]byte{10, 0, 0, 0, 10, 0, 0, 0, 3, 0, 0, 0}, 1, 2, 3)
	data, err := container.Encode(container.New(uint32(document.KindRasterImage), payload))
	require.NoError(t, err)

	report := Validate(data)

	require.False(t, report.OK)
	require.Len(t, report.Findings, 2)
	assert.Equal(t, CodeMissingMetadata, report.Findings[0].Code)
	assert.Equal(t, CodeDimensionMismatch, report.Findings[1].Code)
}

func TestValidateIdempotent(t *testing.T) {
	data := validRasterBytes(t)
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-6] ^= 0x01

	for _, input := range [][]byte{data, corrupted} {
		first := Validate(input)
		second := Validate(input)
		assert.Equal(t, first, second)
	}
}
