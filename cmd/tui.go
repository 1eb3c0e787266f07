package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/soundscript/internal/player"
	"github.com/desertthunder/soundscript/internal/shared"
	"github.com/desertthunder/soundscript/internal/state"
	"github.com/desertthunder/soundscript/internal/ui"
	"github.com/urfave/cli/v3"
)

// Play launches the interactive terminal player.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	logFile := cmd.String("log-file")
	if logFile == "" {
		logFile = r.config.Log.File
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	repo, err := r.repository(cmd.String("status"))
	if err != nil {
		return err
	}

	cfg := r.config.Player
	engine := player.NewBeepEngine(
		player.WithHTTPClient(r.httpClient),
		player.WithEngineLogger(shared.WithLogger(fileLogger, "component", "engine")),
		player.WithSampleRate(cfg.SampleRate),
		player.WithVolume(cfg.Volume),
	)
	p := player.New(engine, shared.WithLogger(fileLogger, "component", "player"))

	home := state.NewHome(repo, p, r.waveforms(repo.Store(), 0), cfg.PollInterval.Duration, shared.WithLogger(fileLogger, "component", "home"))
	defer home.Close()

	err = ui.Run(ctx, ui.Deps{
		Home: home,
		NewTranscript: func() *state.Transcript {
			return state.NewTranscript(repo, shared.WithLogger(fileLogger, "component", "transcript"))
		},
		Logger: fileLogger,
	})
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
