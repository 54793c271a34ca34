package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/htdecomp/internal/server"
	"github.com/matzehuels/htdecomp/pkg/cache"
	"github.com/matzehuels/htdecomp/pkg/observability"
	"github.com/matzehuels/htdecomp/pkg/pipeline"
	"github.com/matzehuels/htdecomp/pkg/store"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the decomposition HTTP API",
		Long: `Run the decomposition HTTP API.

Submitted hypergraphs are decomposed with the defaults of the config file's
[decompose] section, and every run is recorded in the configured store
(in memory, or MongoDB with store.backend = "mongo").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	observability.SetHTTPHooks(observability.NewLogHooks(c.Logger))

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "server:")
	defer runner.Close()

	sc := c.cfg.Store
	st, err := store.New(ctx, sc.Backend, sc.MongoURI, sc.Database)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()

	defaults := c.cfg.Decompose.Options()
	defaults.Formats = []string{pipeline.FormatJSON}
	api := server.New(runner, st, c.Logger, server.Config{
		Timeout:      c.cfg.Server.Timeout.Duration,
		MaxBodyBytes: c.cfg.Server.MaxBodyBytes,
		Defaults:     defaults,
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printSuccess("Listening on %s", StyleHighlight.Render(addr))
	printDetail("store: %s", sc.Backend)

	select {
	case err := <-errc:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
