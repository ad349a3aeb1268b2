package cli

import (
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Starts the JSON API under /api/v1 with a /health check. The server stops
gracefully on interrupt.`,
	Example: `  storelens serve
  storelens serve --addr 127.0.0.1:9000 --db ./brands.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a := mustApp(cmd)
	srv, err := a.Server(cmd.Context(), serveAddr)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context())
}
