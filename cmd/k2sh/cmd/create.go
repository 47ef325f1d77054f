package cmd

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/k2shbwi/k2sh/pkg/document"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a container file from a PNG image",
	Long: `Create a container file from a PNG image with optional metadata.

Example:
  k2sh create -i photo.png -o photo.k2sh -t "Sunset" -m author=alice -m camera=x100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		title, _ := cmd.Flags().GetString("title")
		metaPairs, _ := cmd.Flags().GetStringArray("meta")

		meta, err := parseMetaPairs(metaPairs)
		if err != nil {
			return err
		}
		if title != "" {
			meta["title"] = title
		}

		doc, err := loadPNG(input)
		if err != nil {
			return err
		}

		data, err := document.Encode(doc, meta)
		if err != nil {
			return err
		}

		if err := os.WriteFile(output, data, 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", output)
		}

		container.Logger().Info("created container",
			zap.String("input", input),
			zap.String("output", output),
			zap.Int("bytes", len(data)))
		cmd.Printf("wrote %s (%d bytes)\n", output, len(data))
		return nil
	},
}

// parseMetaPairs turns repeated key=value flags into a metadata map.
func parseMetaPairs(pairs []string) (map[string]string, error) {
	meta := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid metadata pair %q, expected key=value", p)
		}
		meta[key] = value
	}
	return meta, nil
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringP("input", "i", "", "Input PNG file (required)")
	createCmd.Flags().StringP("output", "o", "", "Output container file (required)")
	createCmd.Flags().StringP("title", "t", "", "Title metadata")
	createCmd.Flags().StringArrayP("meta", "m", nil, "Additional metadata as key=value (repeatable)")
	createCmd.MarkFlagRequired("input")
	createCmd.MarkFlagRequired("output")
}
