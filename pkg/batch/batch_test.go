package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2shbwi/k2sh/pkg/codec"
	"github.com/k2shbwi/k2sh/pkg/container"
	"github.com/k2shbwi/k2sh/pkg/document"
)

func containerInput(t *testing.T, id string) Input {
	t.Helper()
	doc := document.NewRaster(&document.RasterImage{
		Width: 2, Height: 2, Channels: 1,
		Pixels: []byte{1, 2, 3, 4},
	})
	data, err := document.Encode(doc, map[string]string{"source": id})
	require.NoError(t, err)
	return Input{ID: id, Data: data}
}

func containerInputs(t *testing.T, n int) []Input {
	t.Helper()
	inputs := make([]Input, n)
	for i := range inputs {
		inputs[i] = containerInput(t, fmt.Sprintf("input-%03d", i))
	}
	return inputs
}

func TestRunValidateAll(t *testing.T) {
	inputs := containerInputs(t, 8)

	report := Run(context.Background(), inputs, OpValidate, Config{Workers: 4})

	assert.Equal(t, 8, report.Total)
	assert.Equal(t, 8, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Cancelled)
}

func TestRunIsolation(t *testing.T) {
	inputs := containerInputs(t, 10)
	// Corrupt one item in the middle; its neighbors must be untouched.
	corrupted := append([]byte(nil), inputs[4].Data...)
	corrupted[len(corrupted)-5] ^= 0xFF
	inputs[4].Data = corrupted

	report := Run(context.Background(), inputs, OpValidate, Config{Workers: 3})

	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 9, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, report.Total, report.Succeeded+report.Failed+report.Cancelled)

	require.Equal(t, OutcomeFailure, report.Items[4].Outcome)
	require.NotNil(t, report.Items[4].Err)
	assert.Equal(t, "validation_failed", report.Items[4].Err.Kind)
	for i, item := range report.Items {
		if i != 4 {
			assert.Equal(t, OutcomeSuccess, item.Outcome, "item %d", i)
		}
	}
}

func TestRunPreservesOrder(t *testing.T) {
	inputs := containerInputs(t, 32)

	report := Run(context.Background(), inputs, OpValidate, Config{Workers: 8})

	for i, item := range report.Items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, inputs[i].ID, item.ID)
	}
}

func TestRunOrderDeterministicAcrossWorkerCounts(t *testing.T) {
	inputs := containerInputs(t, 16)
	// Corrupt a few so both outcomes appear.
	for _, i := range []int{3, 11} {
		d := append([]byte(nil), inputs[i].Data...)
		d[len(d)-5] ^= 0xFF
		inputs[i].Data = d
	}

	sequential := Run(context.Background(), inputs, OpValidate, Config{Workers: 1})

	for _, workers := range []int{2, 4, 16} {
		parallel := Run(context.Background(), inputs, OpValidate, Config{Workers: workers})

		require.Equal(t, len(sequential.Items), len(parallel.Items))
		for i := range sequential.Items {
			assert.Equal(t, sequential.Items[i].ID, parallel.Items[i].ID)
			assert.Equal(t, sequential.Items[i].Outcome, parallel.Items[i].Outcome, "item %d with %d workers", i, workers)
		}
		assert.Equal(t, sequential.Succeeded, parallel.Succeeded)
		assert.Equal(t, sequential.Failed, parallel.Failed)
	}
}

func TestRunDecodeArtifacts(t *testing.T) {
	inputs := containerInputs(t, 3)

	report := Run(context.Background(), inputs, OpDecode, Config{Workers: 2})

	require.Equal(t, 3, report.Succeeded)
	for _, item := range report.Items {
		assert.NotEmpty(t, item.Artifact)
		// Decode artifact is the raw payload: raster header + pixels.
		assert.True(t, bytes.HasSuffix(item.Artifact, []byte{1, 2, 3, 4}))
	}
}

func TestRunEncode(t *testing.T) {
	inputs := []Input{
		{ID: "a", Data: []byte{1, 2, 3, 4}},
		{ID: "b", Data: []byte{5, 6, 7, 8}},
	}

	cfg := Config{
		Workers:  2,
		Metadata: map[string]string{"author": "alice"},
		LoadDocument: func(in Input) (*document.Document, error) {
			return document.NewRaster(&document.RasterImage{
				Width: 2, Height: 2, Channels: 1, Pixels: in.Data,
			}), nil
		},
	}

	report := Run(context.Background(), inputs, OpEncode, cfg)

	require.Equal(t, 2, report.Succeeded)
	for i, item := range report.Items {
		doc, err := document.Decode(item.Artifact)
		require.NoError(t, err)
		assert.Equal(t, inputs[i].Data, doc.Raster.Pixels)
		author, ok := doc.Meta("author")
		require.True(t, ok)
		assert.Equal(t, "alice", author)
	}
}

func TestRunEncodeWithoutLoader(t *testing.T) {
	report := Run(context.Background(), containerInputs(t, 2), OpEncode, Config{})

	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, "no_loader", report.Items[0].Err.Kind)
}

// handEncoded builds container bytes directly so decode-side metadata
// rejections are reachable; Encode refuses to produce them.
func handEncoded(meta func(buf []byte) []byte) []byte {
	buf := append([]byte(nil), container.Magic[:]...)
	buf = codec.AppendUint32(buf, container.Version)
	buf = meta(buf)
	buf = codec.AppendUint32(buf, uint32(document.KindRasterImage))
	buf = codec.AppendBytes(buf, []byte{2, 0, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 9, 9, 9, 9})
	return codec.AppendUint32(buf, codec.Checksum(buf))
}

func TestRunErrorKinds(t *testing.T) {
	good := containerInput(t, "good")

	bad := append([]byte(nil), good.Data...)
	bad[0] = 'X'

	short := good.Data[:6]

	dupKey := handEncoded(func(buf []byte) []byte {
		buf = codec.AppendUint32(buf, 2)
		for i := 0; i < 2; i++ {
			buf = codec.AppendString(buf, "author")
			buf = codec.AppendUint8(buf, 0)
			buf = codec.AppendBytes(buf, []byte("alice"))
		}
		return buf
	})

	badType := handEncoded(func(buf []byte) []byte {
		buf = codec.AppendUint32(buf, 1)
		buf = codec.AppendString(buf, "author")
		buf = codec.AppendUint8(buf, 9)
		return codec.AppendBytes(buf, []byte("alice"))
	})

	badKey := handEncoded(func(buf []byte) []byte {
		buf = codec.AppendUint32(buf, 1)
		buf = codec.AppendBytes(buf, []byte{0xFF, 0xFE})
		buf = codec.AppendUint8(buf, 0)
		return codec.AppendBytes(buf, []byte("alice"))
	})

	inputs := []Input{
		good,
		{ID: "bad-magic", Data: bad},
		{ID: "truncated", Data: short},
		{ID: "dup-key", Data: dupKey},
		{ID: "bad-type", Data: badType},
		{ID: "bad-key", Data: badKey},
	}

	report := Run(context.Background(), inputs, OpDecode, Config{Workers: 1})

	assert.Equal(t, OutcomeSuccess, report.Items[0].Outcome)
	assert.Equal(t, "bad_magic", report.Items[1].Err.Kind)
	assert.Equal(t, "truncated_input", report.Items[2].Err.Kind)
	assert.Equal(t, "duplicate_metadata_key", report.Items[3].Err.Kind)
	assert.Equal(t, "invalid_value_type", report.Items[4].Err.Kind)
	assert.Equal(t, "invalid_utf8", report.Items[5].Err.Kind)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var started atomic.Int32
	inputs := make([]Input, 50)
	for i := range inputs {
		inputs[i] = Input{ID: fmt.Sprintf("in-%d", i)}
	}

	cfg := Config{
		Workers: 2,
		LoadDocument: func(in Input) (*document.Document, error) {
			if started.Add(1) == 4 {
				cancel()
			}
			time.Sleep(time.Millisecond)
			return document.NewRaster(&document.RasterImage{Width: 1, Height: 1, Channels: 1, Pixels: []byte{9}}), nil
		},
	}

	report := Run(ctx, inputs, OpEncode, cfg)

	assert.Equal(t, 50, report.Total)
	assert.Equal(t, report.Total, report.Succeeded+report.Failed+report.Cancelled)
	assert.Greater(t, report.Cancelled, 0, "cancellation should leave unstarted items")
	assert.Greater(t, report.Succeeded, 0, "items completed before cancel keep their outcome")
	assert.Equal(t, 0, report.Failed)

	// Cancelled slots still carry their identifiers.
	for _, item := range report.Items {
		assert.NotEmpty(t, item.ID)
		if item.Outcome == OutcomeCancelled {
			assert.Nil(t, item.Artifact)
		}
	}
}

func TestRunEmptyInputs(t *testing.T) {
	report := Run(context.Background(), nil, OpValidate, Config{Workers: 4})

	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.Items)
}

func TestReportJSON(t *testing.T) {
	inputs := containerInputs(t, 2)
	d := append([]byte(nil), inputs[1].Data...)
	d[0] = 'X'
	inputs[1].Data = d

	report := Run(context.Background(), inputs, OpValidate, Config{Workers: 1})

	out, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "validate", decoded["operation"])
	assert.Equal(t, float64(2), decoded["total"])

	items := decoded["items"].([]any)
	failed := items[1].(map[string]any)
	assert.Equal(t, "failure", failed["outcome"])
	assert.Equal(t, "bad_magic", failed["error"].(map[string]any)["kind"])
	// Artifact bytes never leak into the serialized report.
	assert.NotContains(t, items[0].(map[string]any), "Artifact")
}
