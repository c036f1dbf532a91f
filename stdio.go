package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	log "github.com/inconshreveable/log15/v3"
	"github.com/jpillora/backoff"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/sinking-island/api"
	"github.com/wricardo/sinking-island/config"
	"github.com/wricardo/sinking-island/transport/mcp"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server, starting an internal API if none is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Usage: "REST API to proxy (or API_URL)"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for sessions created without one, internal API only"},
			&cli.DurationFlag{Name: "api-timeout", Usage: "how long to wait for the external API", Value: 3 * time.Second},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			return runMCP(ctx, settings, logger, cmd.Duration("api-timeout"), cmd.Root().Reader, cmd.Root().Writer)
		},
	}
}

// waitForAPI polls baseURL's health endpoint with exponential backoff until it
// answers 200 or timeout elapses.
func waitForAPI(ctx context.Context, baseURL string, timeout time.Duration) bool {
	b := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    time.Second,
		Factor: 2,
		Jitter: true,
	}
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}

		wait := b.Duration()
		if time.Now().Add(wait).After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
}

// startInternalAPI serves a private API on a loopback port and returns its
// base URL and a function that stops it.
func startInternalAPI(ctx context.Context, settings *config.Settings, logger log.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	st := newStack(settings, logger)
	st.start(ctx, settings, logger)

	httpServer := &http.Server{
		Handler: api.NewServer(st.service, st.hub, api.WithLogger(logger.New("component", "api"))),
	}
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("internal HTTP server error", "err", err)
		}
	}()

	stop := func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}
	return loopbackURL(ln), stop, nil
}

// runMCP serves MCP on in/out until ctx is done or in is exhausted.
func runMCP(ctx context.Context, settings *config.Settings, logger log.Logger, apiTimeout time.Duration, in io.Reader, out io.Writer) error {
	baseURL := settings.APIURL
	logger.Info("checking for external API server", "url", baseURL)

	if waitForAPI(ctx, baseURL, apiTimeout) {
		logger.Info("using external API server", "url", baseURL)
	} else {
		logger.Info("no external API server found, starting internal one")
		internalURL, stop, err := startInternalAPI(ctx, settings, logger)
		if err != nil {
			return err
		}
		defer stop()
		baseURL = internalURL
		logger.Info("internal API server ready", "url", baseURL)
	}

	client := mcp.NewClient(baseURL, mcp.WithLogger(logger.New("component", "mcp")))
	logger.Info("MCP stdio server ready")
	if err := client.ServeStdio(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
