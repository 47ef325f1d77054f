package cmd

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/k2shbwi/k2sh/pkg/document"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print a summary of a container file",
	Long: `Print the header and metadata of a container file without decoding the payload.

Example:
  k2sh info photo.k2sh
  k2sh info photo.k2sh --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}

		summary, err := document.Info(data)
		if err != nil {
			return err
		}

		if asJSON {
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		}

		cmd.Printf("file:     %s\n", args[0])
		cmd.Printf("version:  %d\n", summary.Version)
		cmd.Printf("kind:     %s\n", document.Kind(summary.PayloadKind))
		cmd.Printf("payload:  %d bytes\n", summary.PayloadLen)
		cmd.Printf("total:    %d bytes\n", summary.TotalLen)
		if len(summary.Metadata) > 0 {
			cmd.Println("metadata:")
			for _, entry := range summary.Metadata {
				value := string(entry.Value)
				if entry.Type != 0 {
					value = "<binary>"
				}
				cmd.Printf("  %s = %s\n", entry.Key, value)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().Bool("json", false, "Print the summary as JSON")
}
