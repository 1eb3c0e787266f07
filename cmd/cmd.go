// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func statusFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "status",
		Usage: "Content status to list (default: api.status from config)",
	}
}

// setupCommand handles setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config if missing, initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tracksCommand handles catalog operations against the content backend.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tracks",
		Aliases: []string{"t"},
		Usage:   "List, inspect, sync and export tracks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tracks (falls back to the local cache when offline)",
				Flags: []cli.Flag{
					statusFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.TracksList,
			},
			{
				Name:  "show",
				Usage: "Print the transcript and summary of a track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Content ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: md, txt, json",
						Value:   "txt",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.TracksShow,
			},
			{
				Name:  "sync",
				Usage: "Fetch the track list and every detail into the local store",
				Flags: []cli.Flag{
					statusFlag(),
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent detail requests",
						Value:   4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Detail requests per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "waveforms",
						Usage: "Also download audio and cache waveform amplitudes",
					},
				},
				Action: r.TracksSync,
			},
			{
				Name:  "export",
				Usage: "Export the track list",
				Flags: []cli.Flag{
					statusFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, md, txt, json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: tracks.{format})",
					},
				},
				Action: r.TracksExport,
			},
			{
				Name:  "export-details",
				Usage: "Export every transcript and summary to a directory",
				Flags: []cli.Flag{
					statusFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: md, txt, json",
						Value:   "md",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: transcripts_{timestamp})",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent workers",
						Value:   5,
					},
				},
				Action: r.TracksExportDetails,
			},
			{
				Name:  "waveform",
				Usage: "Print waveform amplitudes (0-100) of a track",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Content ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "resolution",
						Usage: "Amplitude values per second (default: player.waveform_resolution)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TracksWaveform,
			},
			{
				Name:  "open",
				Usage: "Open a track's audio or artwork with the system handler",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Content ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "image",
						Usage: "Open the hero image instead of the audio",
					},
				},
				Action: r.TracksOpen,
			},
		},
	}
}

// playCommand returns the top-level command launching the interactive player.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive terminal player",
		Flags: []cli.Flag{
			statusFlag(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log destination while the TUI runs (default: log.file from config)",
			},
		},
		Action: r.Play,
	}
}

// serveCommand runs the development content backend.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local track store as a development content backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port from config)",
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "JSON file of content details loaded into the store before serving",
			},
			statusFlag(),
			&cli.StringFlag{
				Name:  "token",
				Usage: "Bearer token required from clients (default: api.token from config)",
			},
		},
		Action: r.Serve,
	}
}
