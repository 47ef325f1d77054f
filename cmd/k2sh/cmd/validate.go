package cmd

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/k2shbwi/k2sh/pkg/validate"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a container file",
	Long: `Validate a container file structurally and semantically.

Exits with a non-zero status when the file is invalid.

Example:
  k2sh validate photo.k2sh
  k2sh validate photo.k2sh --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}

		report := validate.Validate(data)

		if asJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
		} else if report.OK {
			cmd.Printf("%s: ok\n", args[0])
		} else {
			cmd.Printf("%s: invalid\n", args[0])
			for _, f := range report.Findings {
				if f.Field != "" {
					cmd.Printf("  [%s] %s: %s\n", f.Code, f.Field, f.Message)
				} else {
					cmd.Printf("  [%s] %s\n", f.Code, f.Message)
				}
			}
		}

		if !report.OK {
			return errors.Newf("%s failed validation with %d finding(s)", args[0], len(report.Findings))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
}
