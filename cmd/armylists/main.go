package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/armylists/app"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/infrastructure/export"
	"github.com/Black-And-White-Club/armylists/app/pipeline"
	"github.com/Black-And-White-Club/armylists/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliApp := &cli.App{
		Name:  "armylists",
		Usage: "parse tournament army lists and compute standings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"ARMYLISTS_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			newParseCommand(),
			newScoreCommand(),
			newServeCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(c *cli.Context) (*app.App, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return app.NewApp(c.Context, cfg, app.Options{LogOutput: os.Stderr})
}

func newParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "build army records and print them as NDJSON",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			application, err := newApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			doc, err := application.LoadDocument(c.Args().Slice()...)
			if err != nil {
				return err
			}
			report, err := application.Pipeline.Build(c.Context, doc)
			printDiagnostics(report)
			if err != nil {
				return err
			}
			return export.NewNDJSONWriter(os.Stdout).Export(c.Context, report.Armies)
		},
	}
}

func newScoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "build army records, compute standings and print the report as JSON",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			application, err := newApp(c)
			if err != nil {
				return err
			}
			defer application.Close()

			doc, err := application.LoadDocument(c.Args().Slice()...)
			if err != nil {
				return err
			}
			report, err := application.Pipeline.Process(c.Context, doc)
			if err != nil {
				printDiagnostics(report)
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			application, err := newApp(c)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Serve(c.Context)
		},
	}
}

func printDiagnostics(report *pipeline.Report) {
	if report == nil {
		return
	}
	for _, msg := range report.Diagnostics.Messages() {
		fmt.Fprintln(os.Stderr, msg)
	}
}
