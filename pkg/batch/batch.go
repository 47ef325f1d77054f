// Package batch fans a single container operation out over many inputs with
// per-item failure isolation and order-preserving aggregation.
package batch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/k2shbwi/k2sh/pkg/codec"
	"github.com/k2shbwi/k2sh/pkg/container"
	"github.com/k2shbwi/k2sh/pkg/document"
	"github.com/k2shbwi/k2sh/pkg/validate"
)

// Operation selects what Run does with each input.
type Operation string

const (
	OpEncode   Operation = "encode"
	OpDecode   Operation = "decode"
	OpValidate Operation = "validate"
)

// Input is one unit of batch work: an identifier (typically the source path)
// and the bytes to operate on. For OpDecode and OpValidate, Data is container
// bytes; for OpEncode, Data is whatever Config.LoadDocument understands.
type Input struct {
	ID   string
	Data []byte
}

// Config tunes a batch run.
type Config struct {
	// Workers is the degree of parallelism; values below 1 run sequentially.
	Workers int
	// Metadata is merged into every container produced by OpEncode.
	Metadata map[string]string
	// LoadDocument turns an input's bytes into a document for OpEncode.
	// Required for OpEncode, ignored otherwise.
	LoadDocument func(Input) (*document.Document, error)
	// Logger, when set, records per-item failures and the run summary.
	Logger *zap.Logger
}

// ErrNoLoader is returned per-item when OpEncode runs without a LoadDocument.
var ErrNoLoader = errors.New("encode operation requires a document loader")

// Run applies op to every input independently and aggregates the outcomes.
//
// One item's failure never aborts the batch, and Report.Items preserves the
// input order no matter how many workers ran or in what order they finished:
// every input owns a pre-sized result slot indexed by its position. On
// context cancellation, completed items keep their outcome, in-flight and
// unstarted items are marked cancelled, and no new items start.
func Run(ctx context.Context, inputs []Input, op Operation, cfg Config) *Report {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	items := make([]Item, len(inputs))

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				items[i] = runItem(ctx, inputs[i], i, op, cfg)
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	report := &Report{Operation: op, Items: items}
	for i := range items {
		// Slots never reached by a worker belong to cancelled inputs.
		if items[i].Outcome == "" {
			items[i] = Item{ID: inputs[i].ID, Index: i, Outcome: OutcomeCancelled}
		}
		switch items[i].Outcome {
		case OutcomeSuccess:
			report.Succeeded++
		case OutcomeFailure:
			report.Failed++
			log.Debug("batch item failed",
				zap.String("id", items[i].ID),
				zap.Int("index", i),
				zap.String("error_kind", items[i].Err.Kind))
		case OutcomeCancelled:
			report.Cancelled++
		}
	}
	report.Total = len(items)

	log.Info("batch run complete",
		zap.String("operation", string(op)),
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("cancelled", report.Cancelled))
	return report
}

// runItem executes op for a single input. The worker owns the input and its
// result slot exclusively; nothing here touches shared state.
func runItem(ctx context.Context, in Input, index int, op Operation, cfg Config) Item {
	if ctx.Err() != nil {
		return Item{ID: in.ID, Index: index, Outcome: OutcomeCancelled}
	}

	artifact, err := apply(in, op, cfg)
	if err != nil {
		return Item{
			ID:      in.ID,
			Index:   index,
			Outcome: OutcomeFailure,
			Err:     &ErrorDetail{Kind: errorKind(err), Message: err.Error()},
		}
	}
	return Item{ID: in.ID, Index: index, Outcome: OutcomeSuccess, Artifact: artifact}
}

func apply(in Input, op Operation, cfg Config) ([]byte, error) {
	switch op {
	case OpEncode:
		if cfg.LoadDocument == nil {
			return nil, ErrNoLoader
		}
		doc, err := cfg.LoadDocument(in)
		if err != nil {
			return nil, err
		}
		return document.Encode(doc, cfg.Metadata)

	case OpDecode:
		c, err := container.Decode(in.Data)
		if err != nil {
			return nil, err
		}
		if _, err := document.FromContainer(c); err != nil {
			return nil, err
		}
		// The artifact of a decode is the reconstructed payload, ready for a
		// renderer or an output writer.
		return c.Payload, nil

	case OpValidate:
		report := validate.Validate(in.Data)
		artifact, err := json.Marshal(report)
		if err != nil {
			return nil, err
		}
		if !report.OK {
			return nil, errors.Wrapf(ErrValidationFailed, "%s", report.Findings[0].Code)
		}
		return artifact, nil

	default:
		return nil, errors.Newf("unknown operation %q", op)
	}
}

// ErrValidationFailed marks an OpValidate item whose report came back not OK.
var ErrValidationFailed = errors.New("validation failed")

// errorKind maps a failure onto a stable kind string for the report.
func errorKind(err error) string {
	switch {
	case errors.Is(err, container.ErrBadMagic):
		return "bad_magic"
	case errors.Is(err, container.ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, container.ErrChecksumMismatch):
		return "checksum_mismatch"
	case errors.Is(err, container.ErrTrailingData):
		return "trailing_data"
	case errors.Is(err, container.ErrDuplicateKey):
		return "duplicate_metadata_key"
	case errors.Is(err, container.ErrInvalidValueType):
		return "invalid_value_type"
	case errors.Is(err, codec.ErrInvalidUTF8):
		return "invalid_utf8"
	case errors.Is(err, codec.ErrTruncatedInput):
		return "truncated_input"
	case errors.Is(err, codec.ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, document.ErrUnsupportedPayloadKind):
		return "unsupported_payload_kind"
	case errors.Is(err, document.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrNoLoader):
		return "no_loader"
	default:
		return "error"
	}
}
