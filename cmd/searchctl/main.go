package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/MSM2025CL/stproject/internal/config"
	"github.com/MSM2025CL/stproject/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "searchctl:", err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	envFlag := &cli.StringFlag{
		Name:  "env",
		Usage: "config environment (config/<env>.yaml)",
		Value: config.GetEnv(),
	}
	configFlag := &cli.StringFlag{
		Name:  "config",
		Usage: "explicit config file path (overrides --env)",
	}
	offersFlag := &cli.BoolFlag{
		Name:  "offers",
		Usage: "rank by the lower of list and offer price (offer <= 0 means none)",
	}
	showFlag := &cli.IntFlag{
		Name:  "show",
		Usage: "maximum number of results",
	}

	return &cli.Command{
		Name:    "searchctl",
		Usage:   "query the product catalog from the command line",
		Version: version.String(),
		Flags:   []cli.Flag{envFlag, configFlag},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "free-text semantic search",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ordering",
						Usage: "price or relevance",
						Value: "price",
					},
					offersFlag,
					&cli.IntFlag{
						Name:  "top-n",
						Usage: "ANN candidates to retrieve",
					},
					showFlag,
					&cli.BoolFlag{
						Name:  "scores",
						Usage: "print similarity scores",
					},
				},
				Action: searchAction,
			},
			{
				Name:      "keyword",
				Usage:     "boolean keyword search (term, +and, |or, !not, |!or-not)",
				ArgsUsage: "<term> [+term|!term|term...]",
				Flags: []cli.Flag{
					offersFlag,
					showFlag,
					&cli.StringSliceFlag{
						Name:  "provider",
						Usage: "provider to include (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "exclude-provider",
						Usage: "provider to exclude (repeatable)",
					},
				},
				Action: keywordAction,
			},
			{
				Name:      "sku",
				Usage:     "look up products by provider code",
				ArgsUsage: "<sku>",
				Action:    skuAction,
			},
			{
				Name:   "inspect",
				Usage:  "print catalog and index build statistics",
				Action: inspectAction,
			},
		},
	}
}
