package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/k2shbwi/k2sh/pkg/document"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Render a container file into another format",
	Long: `Render a container file into a viewable format.

Example:
  k2sh convert photo.k2sh -f html -o photo.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		renderer, ok := container.Renderer(format)
		if !ok {
			return errors.Newf("unsupported output format %q", format)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}

		doc, err := document.Decode(data)
		if err != nil {
			return err
		}

		rendered, err := renderer.Render(doc)
		if err != nil {
			return err
		}

		if err := os.WriteFile(output, rendered, 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", output)
		}

		cmd.Printf("wrote %s\n", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("format", "f", "html", "Output format")
	convertCmd.Flags().StringP("output", "o", "", "Output file (required)")
	convertCmd.MarkFlagRequired("output")
}
