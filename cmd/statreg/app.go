// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/statreg/registry"
	"github.com/urfave/cli/v2"
)

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func idFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "Statute ID",
		Required: true,
	}
}

func pageFlags(defaultLimit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Number of entries to skip",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of entries to print",
			Value: defaultLimit,
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "statreg",
		Usage: "Versioned registry of statutes with indexed and fuzzy search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.IntFlag{
				Name:  "cache-size",
				Usage: "Capacity of the point-lookup cache (0 disables it)",
				Value: registry.DefaultCacheSize,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "load",
				Usage:  "Load statutes from a YAML fixture",
				Action: loadCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the YAML fixture",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of statutes to commit in each batch",
						Value: 256,
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Keep loading after a statute fails",
					},
					&cli.BoolFlag{
						Name:  "validate",
						Usage: "Reject statutes that fail validation",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Print progress to stderr",
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Write current statutes as a YAML fixture",
				Action: exportCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Output path (stdout when empty)",
					},
				},
			},
			{
				Name:   "get",
				Usage:  "Show a statute, or one of its versions",
				Action: getCommand,
				Flags: []cli.Flag{
					dbFlag(),
					idFlag(),
					&cli.Uint64Flag{
						Name:  "version",
						Usage: "Version to show (current when 0)",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "List every recorded version of a statute",
				Action: historyCommand,
				Flags:  []cli.Flag{dbFlag(), idFlag()},
			},
			{
				Name:   "remove",
				Usage:  "Remove a statute",
				Action: removeCommand,
				Flags:  []cli.Flag{dbFlag(), idFlag()},
			},
			{
				Name:   "list",
				Usage:  "List statutes in ID order",
				Action: listCommand,
				Flags:  append([]cli.Flag{dbFlag()}, pageFlags(50)...),
			},
			{
				Name:   "search",
				Usage:  "Find statutes by tag, jurisdiction and status",
				Action: searchCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "tag", Usage: "Required tag"},
					&cli.StringFlag{Name: "jurisdiction", Usage: "Required jurisdiction"},
					&cli.StringFlag{Name: "status", Usage: "Required status (draft, active, repealed, superseded)"},
				}, pageFlags(50)...),
			},
			{
				Name:   "fuzzy",
				Usage:  "Find statutes whose ID or title is close to a query",
				Action: fuzzyCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search text", Required: true},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of matches", Value: 10},
				},
			},
			{
				Name:   "fulltext",
				Usage:  "Rank statutes by query words in title and effect",
				Action: fullTextCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Search text", Required: true},
				},
			},
			{
				Name:   "stats",
				Usage:  "Summarize the registry",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
