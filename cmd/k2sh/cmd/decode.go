package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/k2shbwi/k2sh/pkg/document"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Decode a container file back into a PNG image",
	Long: `Decode a container file holding a raster payload back into a PNG image.

Example:
  k2sh decode photo.k2sh -o photo.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}

		doc, err := document.Decode(data)
		if err != nil {
			return err
		}
		if doc.Kind != document.KindRasterImage {
			return errors.Newf("cannot write %s payload as png", doc.Kind)
		}

		if err := writePNG(doc.Raster, output); err != nil {
			return err
		}

		cmd.Printf("wrote %s (%dx%d)\n", output, doc.Raster.Width, doc.Raster.Height)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringP("output", "o", "", "Output PNG file (required)")
	decodeCmd.MarkFlagRequired("output")
}
