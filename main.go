// Command sinking-island runs the Sinking Island game server.
//
// Commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp endpoint, optionally behind an ngrok tunnel
//  2. "mcp" runs an MCP stdio server against an existing API, or an internal
//     one when none answers
//  3. "play" plays one island in the terminal
//  4. "check-config" prints the effective settings or what is wrong with them
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/inconshreveable/log15/v3"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/sinking-island/config"
	"github.com/wricardo/sinking-island/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Sinking Island Server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Global flags apply to every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "sinking-island",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML settings file",
				Sources: cli.EnvVars("SINKING_ISLAND_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file read before the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn, error or crit",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log at debug level regardless of log-level",
			},
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			checkConfigCommand(),
		},
	}
}

// loadSettings layers defaults, the settings file, the environment and the
// flags the user actually passed, then validates the result.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.Load(config.LoadOptions{
		File:    cmd.String("config"),
		EnvFile: cmd.String("env-file"),
	})
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("log-level") {
		settings.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("debug") {
		settings.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = cmd.Int("port")
	}
	if cmd.IsSet("seed") {
		settings.DefaultSeed = cmd.Int64("seed")
	}
	if cmd.IsSet("api-url") {
		settings.APIURL = cmd.String("api-url")
	}
	if cmd.IsSet("ngrok") {
		settings.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		settings.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		settings.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// setup loads settings and builds the root logger on stderr.
func setup(cmd *cli.Command) (*config.Settings, log.Logger, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(settings.LogLevel, settings.Debug, cmd.Root().ErrWriter)
	if err != nil {
		return nil, nil, err
	}
	return settings, logger, nil
}

func checkConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-config",
		Usage: "Validate the settings and print them",
		Flags: serverFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out := cmd.Root().Writer
			settings, err := loadSettings(cmd)
			if err != nil {
				fmt.Fprintln(out, "Settings are invalid:")
				for _, problem := range config.Problems(err) {
					fmt.Fprintf(out, "  - %v\n", problem)
				}
				return err
			}

			data, err := settings.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}

// serverFlags are shared by the commands that start an API server.
func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
		&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP server port"},
		&cli.Int64Flag{Name: "seed", Usage: "seed for sessions created without one (0 picks a fresh seed)"},
		&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel"},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (or NGROK_AUTHTOKEN)"},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain"},
	}
}
