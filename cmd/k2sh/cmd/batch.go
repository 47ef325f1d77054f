package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/k2shbwi/k2sh/pkg/batch"
	"github.com/k2shbwi/k2sh/pkg/document"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a directory of files through the pipeline",
	Long: `Process every matching file in a directory through the encode, decode, or
validate pipeline. Items run concurrently but the report always lists them
in input order. One bad file never stops the rest.

Example:
  k2sh batch -i ./containers -o ./out --op validate
  k2sh batch -i ./images -o ./out --op encode --workers 8 --store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir, _ := cmd.Flags().GetString("input")
		outputDir, _ := cmd.Flags().GetString("output")
		opName, _ := cmd.Flags().GetString("op")
		workers, _ := cmd.Flags().GetInt("workers")
		persist, _ := cmd.Flags().GetBool("store")

		op, err := parseOperation(opName)
		if err != nil {
			return err
		}
		if workers <= 0 {
			workers = container.Config().Batch.Workers
		}

		inputs, err := collectInputs(inputDir, op)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return errors.Newf("no matching files in %s", inputDir)
		}

		if err := os.MkdirAll(outputDir, 0o750); err != nil {
			return errors.Wrapf(err, "creating %s", outputDir)
		}

		cfg := batch.Config{
			Workers:      workers,
			Logger:       container.Logger(),
			LoadDocument: loadBatchDocument,
		}
		report := batch.Run(cmd.Context(), inputs, op, cfg)

		if err := writeArtifacts(report, op, outputDir); err != nil {
			return err
		}

		reportJSON, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		reportPath := filepath.Join(outputDir, "report.json")
		if err := os.WriteFile(reportPath, reportJSON, 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", reportPath)
		}

		if persist {
			if err := persistResults(report, reportJSON); err != nil {
				return err
			}
		}

		cmd.Printf("%s: %d total, %d succeeded, %d failed, %d cancelled\n",
			report.Operation, report.Total, report.Succeeded, report.Failed, report.Cancelled)
		if report.Failed > 0 {
			return errors.Newf("%d item(s) failed", report.Failed)
		}
		return nil
	},
}

func parseOperation(name string) (batch.Operation, error) {
	switch batch.Operation(name) {
	case batch.OpEncode, batch.OpDecode, batch.OpValidate:
		return batch.Operation(name), nil
	default:
		return "", errors.Newf("unknown operation %q, expected encode, decode, or validate", name)
	}
}

// collectInputs reads the directory in lexical order so batch output is
// stable run to run.
func collectInputs(dir string, op batch.Operation) ([]batch.Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var inputs []batch.Input
	for _, entry := range entries {
		if entry.IsDir() || !matchesOperation(entry.Name(), op) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		inputs = append(inputs, batch.Input{ID: entry.Name(), Data: data})
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].ID < inputs[j].ID })
	return inputs, nil
}

func matchesOperation(name string, op batch.Operation) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if op == batch.OpEncode {
		return ext == ".png"
	}
	return ext == ".k2sh"
}

// loadBatchDocument adapts PNG inputs into documents for the encode
// operation.
func loadBatchDocument(in batch.Input) (*document.Document, error) {
	return rasterFromPNG(in.Data)
}

// writeArtifacts writes per-item outputs next to the report.
func writeArtifacts(report *batch.Report, op batch.Operation, dir string) error {
	for _, item := range report.Items {
		if item.Outcome != batch.OutcomeSuccess || len(item.Artifact) == 0 {
			continue
		}
		name := artifactName(item.ID, op)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, item.Artifact, 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return nil
}

func artifactName(id string, op batch.Operation) string {
	base := strings.TrimSuffix(id, filepath.Ext(id))
	switch op {
	case batch.OpEncode:
		return base + ".k2sh"
	case batch.OpDecode:
		return base + ".bin"
	default:
		return base + ".out"
	}
}

// persistResults copies artifacts and the report into the pebble store.
func persistResults(report *batch.Report, reportJSON []byte) error {
	store, err := container.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, item := range report.Items {
		if item.Outcome != batch.OutcomeSuccess || len(item.Artifact) == 0 {
			continue
		}
		id, err := store.PutArtifact(item.Artifact)
		if err != nil {
			return err
		}
		container.Logger().Debug("stored artifact",
			zap.String("item", item.ID), zap.String("id", id.String()))
	}

	id, err := store.PutReport(reportJSON)
	if err != nil {
		return err
	}
	container.Logger().Info("stored batch report", zap.String("id", id.String()))
	return nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringP("input", "i", "", "Input directory (required)")
	batchCmd.Flags().StringP("output", "o", "", "Output directory (required)")
	batchCmd.Flags().String("op", "validate", "Operation to apply: encode, decode, or validate")
	batchCmd.Flags().IntP("workers", "w", 0, "Worker count (0 uses the configured default)")
	batchCmd.Flags().Bool("store", false, "Also persist artifacts and the report in the artifact store")
	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")
}
