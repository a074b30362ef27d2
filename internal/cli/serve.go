package cli

import (
	"github.com/spf13/cobra"

	"github.com/richjohnson-wwt/nat-wof/internal/httpserver"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT or config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	port := servePort
	if port == "" {
		port = a.Cfg.HTTP.Port
	}
	return httpserver.New(a).Start(cmd.Context(), ":"+port)
}
