// Command bruteforcer plays a session over the REST API until it escapes.
// Every attempt resets the session and walks the island with a different
// route strategy; the flood deck replays identically after a reset, so
// varying the strategy is what changes the outcome.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/inconshreveable/log15/v3"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/sinking-island/game/engine"
	"github.com/wricardo/sinking-island/logging"
)

// ErrNotSolved is returned when every attempt ends without an escape.
var ErrNotSolved = errors.New("no attempt escaped the island")

// Options bounds a brute force run.
type Options struct {
	MaxAttempts int
	MaxCommands int
	Delay       time.Duration
	Verbose     bool
}

// Attempt summarises one replay of the session with a single strategy.
type Attempt struct {
	Number    int
	Strategy  string
	Commands  int
	Rejected  int
	Turn      int
	Status    engine.Status
	Reason    engine.LossReason
	Collected bool
}

// Won reports whether the attempt ended in an escape.
func (a Attempt) Won() bool {
	return a.Status == engine.Won
}

type variant struct {
	name     string
	strategy *RouteStrategy
}

// variants lists every direction order, first with shoring enabled and
// then without it.
func variants() []variant {
	var out []variant
	for _, shoreUp := range []bool{true, false} {
		for _, order := range directionOrders() {
			name := fmt.Sprintf("%v shore=%t", order, shoreUp)
			out = append(out, variant{name: name, strategy: NewRouteStrategy(order, shoreUp)})
		}
	}
	return out
}

// play runs one attempt from state until the game is decided or the
// command limit is reached.
func play(ctx context.Context, client *Client, state *engine.GameState, strategy *RouteStrategy, opts Options, logger log.Logger) (Attempt, error) {
	var a Attempt
	for !state.IsOver() && a.Commands < opts.MaxCommands {
		action := strategy.NextAction(state)
		if action == "" {
			break
		}

		result, err := client.Act(ctx, action)
		if err != nil {
			return a, err
		}
		a.Commands++

		if !result.Applied {
			a.Rejected++
			logger.Debug("rejected", "action", action, "reason", result.Reason)
			// Spend the turn rather than repeat the same rejected command.
			if action != engine.ActionEndTurn {
				if result, err = client.Act(ctx, engine.ActionEndTurn); err != nil {
					return a, err
				}
				a.Commands++
			}
		}
		if result.GameState != nil {
			state = result.GameState
		}

		if opts.Verbose && a.Commands%25 == 0 {
			logger.Info("progress", "commands", a.Commands, "turn", state.Turn,
				"pos", state.Adventurer.Position, "artifact", state.Adventurer.HasArtifact)
		}

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return a, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	a.Turn = state.Turn
	a.Status = state.Status
	a.Reason = state.LossReason
	a.Collected = state.Adventurer.HasArtifact || state.Status == engine.Won
	return a, nil
}

// bruteforce resets the client's session before each attempt and stops at
// the first escape. The attempts played so far are always returned.
func bruteforce(ctx context.Context, client *Client, opts Options, logger log.Logger) ([]Attempt, error) {
	var attempts []Attempt
	all := variants()

	for i := 0; i < opts.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}
		v := all[i%len(all)]

		state, err := client.Reset(ctx)
		if err != nil {
			return attempts, err
		}

		a, err := play(ctx, client, state, v.strategy, opts, logger)
		a.Number = i + 1
		a.Strategy = v.name
		if err != nil {
			return attempts, err
		}
		attempts = append(attempts, a)

		logger.Info("attempt finished", "attempt", a.Number, "strategy", a.Strategy,
			"commands", a.Commands, "rejected", a.Rejected, "turn", a.Turn,
			"status", a.Status, "reason", a.Reason)
		if a.Won() {
			return attempts, nil
		}
	}
	return attempts, ErrNotSolved
}

// openSession resumes the saved or requested session, falling back to a
// fresh one, and records the id in sessionFile.
func openSession(ctx context.Context, client *Client, resume string, seed *int64, sessionFile string, logger log.Logger) error {
	if resume == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			resume = string(bytes.TrimSpace(data))
		}
	}

	if resume != "" {
		state, err := client.Resume(ctx, resume)
		if err == nil {
			logger.Info("resumed session", "session", resume, "turn", state.Turn, "status", state.Status)
			return nil
		}
		logger.Warn("failed to resume session, creating a new one", "session", resume, "err", err)
	}

	info, err := client.CreateSession(ctx, seed)
	if err != nil {
		return err
	}
	logger.Info("session created", "session", info.ID, "seed", info.Seed)

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(info.ID), 0o644); err != nil {
			logger.Warn("failed to save session id", "file", sessionFile, "err", err)
		}
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bruteforcer",
		Usage: "Play a session until the adventurer escapes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "game server URL", Value: "http://localhost:8080"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for a new session (server picks when unset)"},
			&cli.StringFlag{Name: "continue", Usage: "resume an existing session by id"},
			&cli.StringFlag{Name: "session-file", Usage: "file remembering the session id", Value: ".session"},
			&cli.IntFlag{Name: "max-attempts", Usage: "attempts before giving up", Value: 100},
			&cli.IntFlag{Name: "max-commands", Usage: "commands per attempt", Value: 500},
			&cli.DurationFlag{Name: "delay", Usage: "pause between commands"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log progress and rejections"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := "info"
			if cmd.Bool("verbose") {
				level = "debug"
			}
			logger, err := logging.New(level, false, cmd.Root().ErrWriter)
			if err != nil {
				return err
			}

			client := NewClient(cmd.String("url"))
			var seed *int64
			if cmd.IsSet("seed") {
				s := cmd.Int64("seed")
				seed = &s
			}
			if err := openSession(ctx, client, cmd.String("continue"), seed, cmd.String("session-file"), logger); err != nil {
				return err
			}

			attempts, err := bruteforce(ctx, client, Options{
				MaxAttempts: cmd.Int("max-attempts"),
				MaxCommands: cmd.Int("max-commands"),
				Delay:       cmd.Duration("delay"),
				Verbose:     cmd.Bool("verbose"),
			}, logger)
			if err != nil {
				logger.Error("gave up", "session", client.SessionID(), "attempts", len(attempts), "err", err)
				return err
			}

			last := attempts[len(attempts)-1]
			fmt.Fprintf(cmd.Root().Writer, "🎉 Escaped in attempt %d after %d commands (turn %d) using %s\nSession: %s\n",
				last.Number, last.Commands, last.Turn, last.Strategy, client.SessionID())
			return nil
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
