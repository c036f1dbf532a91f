package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	log "github.com/inconshreveable/log15/v3"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/sinking-island/api"
	"github.com/wricardo/sinking-island/config"
	"github.com/wricardo/sinking-island/game/service"
	"github.com/wricardo/sinking-island/game/session"
	"github.com/wricardo/sinking-island/logging"
	"github.com/wricardo/sinking-island/transport/mcp"
	"github.com/wricardo/sinking-island/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokconfig "golang.ngrok.com/ngrok/config"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "Run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags:   serverFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			logger.Info("starting", "app", AppName, "version", Version)

			ln, err := net.Listen("tcp", settings.Addr())
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", settings.Addr(), err)
			}
			return runServer(ctx, settings, logger, ln)
		},
	}
}

// stack is one game service with its session store and update hub.
type stack struct {
	sessions *session.Manager
	hub      *websocket.Hub
	service  service.GameService
}

// newStack wires sessions, hub and service. Background work starts with
// start.
func newStack(settings *config.Settings, logger log.Logger) *stack {
	s := &stack{
		sessions: session.NewManager(),
		hub:      websocket.NewHub(settings.WebSocketBuffer, logger.New("component", "websocket")),
	}

	opts := []service.Option{
		service.WithNotifier(s.hub.BroadcastToSession),
		service.WithLogger(logger.New("component", "service")),
	}
	if seed := settings.DefaultSeed; seed != 0 {
		opts = append(opts, service.WithSeedSource(func() int64 { return seed }))
	}
	s.service = service.NewGameService(s.sessions, opts...)
	return s
}

// start runs the hub and the session cleanup until ctx is done.
func (s *stack) start(ctx context.Context, settings *config.Settings, logger log.Logger) {
	go s.hub.Run(ctx)
	go s.sessions.RunCleanup(ctx, settings.CleanupInterval, settings.SessionTTL, logger.New("component", "cleanup"))
}

// loopbackURL is the address local clients of ln should use.
func loopbackURL(ln net.Listener) string {
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		return fmt.Sprintf("http://127.0.0.1:%d", tcp.Port)
	}
	return "http://" + ln.Addr().String()
}

// runServer serves the API on ln, plus an ngrok tunnel when enabled, until
// ctx is cancelled. It then shuts down gracefully.
func runServer(ctx context.Context, settings *config.Settings, logger log.Logger, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := newStack(settings, logger)
	st.start(ctx, settings, logger)

	baseURL := loopbackURL(ln)
	mcpClient := mcp.NewClient(baseURL, mcp.WithLogger(logger.New("component", "mcp")))
	handler := api.NewServer(st.service, st.hub,
		api.WithMCPHandler(mcpClient.HTTPHandler()),
		api.WithLogger(logger.New("component", "api")),
	)

	httpServer := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server listening", "addr", ln.Addr().String())
		logger.Info("endpoints", "api", baseURL+"/api", "ws", baseURL+"/ws?session=<id>", "mcp", baseURL+"/mcp")
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if settings.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serveNgrok(ctx, settings.Ngrok, handler, logger.New("component", "ngrok")); err != nil {
				logger.Error("ngrok tunnel failed", "err", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		logger.Error("server stopped", "err", serveErr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "err", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return serveErr
}

// serveNgrok exposes handler through an ngrok HTTP endpoint until ctx is
// done.
func serveNgrok(ctx context.Context, settings config.NgrokSettings, handler http.Handler, logger log.Logger) error {
	var endpoint ngrokconfig.Tunnel
	if settings.Domain != "" {
		endpoint = ngrokconfig.HTTPEndpoint(ngrokconfig.WithDomain(settings.Domain))
	} else {
		endpoint = ngrokconfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint,
		ngrok.WithAuthtoken(settings.AuthToken),
		ngrok.WithLogger(logging.NgrokAdapter(logger)),
	)
	if err != nil {
		return fmt.Errorf("failed to start ngrok tunnel: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "err", err)
		}
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established", "url", url)
	logger.Info("public endpoints", "api", url+"/api", "ws", url+"/ws?session=<id>", "mcp", url+"/mcp")

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("ngrok tunnel closed")
	return nil
}
