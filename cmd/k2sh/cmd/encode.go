package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/k2shbwi/k2sh/pkg/document"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a PNG image into a container file",
	Long: `Encode a PNG image into a container file without extra metadata.

Example:
  k2sh encode -i photo.png -o photo.k2sh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")

		doc, err := loadPNG(input)
		if err != nil {
			return err
		}

		data, err := document.Encode(doc, nil)
		if err != nil {
			return err
		}

		if err := os.WriteFile(output, data, 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", output)
		}

		cmd.Printf("wrote %s (%d bytes)\n", output, len(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringP("input", "i", "", "Input PNG file (required)")
	encodeCmd.Flags().StringP("output", "o", "", "Output container file (required)")
	encodeCmd.MarkFlagRequired("input")
	encodeCmd.MarkFlagRequired("output")
}
