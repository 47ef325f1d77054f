package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/k2shbwi/k2sh/pkg/view"
)

// viewCmd represents the view command
var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Serve a container file over HTTP",
	Long: `Serve a container file as an HTML page with a small JSON API alongside it.

Example:
  k2sh view photo.k2sh --port 8420`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}

		cfg := view.ServerConfig{Bind: bind, Port: port}
		if cfg.Port == 0 {
			cfg.Port = container.Config().Viewer.Port
		}
		if cfg.Bind == "" {
			cfg.Bind = container.Config().Viewer.Bind
		}

		container.Logger().Info("serving container",
			zap.String("file", args[0]),
			zap.String("bind", cfg.Bind),
			zap.Int("port", cfg.Port))
		return view.StartServer(data, cfg, container.Logger())
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().IntP("port", "p", 0, "Port to listen on (0 uses the configured default)")
	viewCmd.Flags().String("bind", "", "Address to bind to")
}
