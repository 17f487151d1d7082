package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/ffimath/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the exports over WebSocket",
	Long: `Serve the exports over WebSocket for harnesses running in another process.

Clients connect to /ws and send JSON messages:

  {"type":"call","id":"1","symbol":"gcd","args":[12,18]}
  {"type":"symbols"}

Replies carry the same id. /healthz answers "ok".

Examples:
  ffimath serve
  ffimath serve --addr :9000 --lib ./dist/libffimath.so --strict`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runServe,
}

var (
	serveAddr   string
	serveLib    string
	serveStrict bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:7341)")
	serveCmd.Flags().StringVar(&serveLib, "lib", "", "shared library to load instead of the in-process implementation")
	serveCmd.Flags().BoolVar(&serveStrict, "strict", false, "reject calls that violate a precondition")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, name, closeBackend, err := openBackend(cfg, serveLib)
	if err != nil {
		return err
	}
	defer closeBackend()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Serve.GetAddr()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(backend,
		server.WithPrefix(cfg.SymbolPrefix),
		server.WithStrict(serveStrict),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on ws://%s/ws\n", name, addr)
	return srv.ListenAndServe(ctx, addr)
}
