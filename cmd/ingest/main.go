package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/markdave123-py/contexta-ingest/internal/app"
	"github.com/markdave123-py/contexta-ingest/internal/config"
	db "github.com/markdave123-py/contexta-ingest/internal/core/database"
	"github.com/markdave123-py/contexta-ingest/internal/models"
	"github.com/markdave123-py/contexta-ingest/internal/services"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "ingest",
		Usage: "Chunk, embed and upsert documents into a vector index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			config.ConfigureLogging(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:        "run",
				Usage:       "Ingest every document of the configured source",
				Description: "Streams per-document progress to stderr. Once documents are loaded the job runs to completion or failure; an interrupt does not stop it midway.",
				Action:      runCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Usage:    "Target index name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "namespace",
						Aliases:  []string{"n"},
						Usage:    "Target namespace inside the index",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Documents directory (overrides DOCUMENTS_DIR)",
					},
				},
			},
			{
				Name:  "namespace",
				Usage: "Manage index namespaces",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a namespace with a fixed vector dimension",
						Action: createNamespaceCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "index", Usage: "Index name", Required: true},
							&cli.StringFlag{Name: "namespace", Aliases: []string{"n"}, Usage: "Namespace name", Required: true},
							&cli.IntFlag{Name: "dim", Usage: "Vector dimension (0 accepts any)", Value: 768},
						},
					},
					{
						Name:   "list",
						Usage:  "List namespaces and their record counts",
						Action: listNamespacesCommand,
					},
				},
			},
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.NewApp(ctx, cfg, c.String("dir"))
	if err != nil {
		return err
	}
	defer a.Close()

	stream, err := a.IngestService.Start(ctx, models.JobRequest{
		IndexName: c.String("index"),
		Namespace: c.String("namespace"),
	})
	if err != nil {
		return err
	}
	return printStream(c.App.ErrWriter, stream)
}

// printStream writes one human-readable line per message and returns the job's error, if any.
func printStream(w io.Writer, stream <-chan services.StreamMessage) error {
	var jobErr error
	for msg := range stream {
		switch {
		case msg.Err != nil:
			jobErr = msg.Err
		case msg.Event != nil && msg.Event.IsComplete:
			fmt.Fprintln(w, "done")
		case msg.Event != nil:
			ev := msg.Event
			fmt.Fprintf(w, "%-30s %4d/%-4d %3d%%\n", ev.SourceName, ev.ChunksUpserted, ev.TotalChunks, ev.Percent())
		default:
			fmt.Fprintf(w, "found %d documents\n", len(msg.FileList))
		}
	}
	return jobErr
}

func openDB(ctx context.Context) (*db.DatabaseClient, error) {
	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	return db.NewDatabaseClient(ctx, cfg)
}

func createNamespaceCommand(c *cli.Context) error {
	client, err := openDB(c.Context)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.CreateNamespace(c.Context, c.String("index"), c.String("namespace"), c.Int("dim")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "namespace %s/%s ready\n", c.String("index"), c.String("namespace"))
	return nil
}

func listNamespacesCommand(c *cli.Context) error {
	client, err := openDB(c.Context)
	if err != nil {
		return err
	}
	defer client.Close()

	nss, err := client.ListNamespaces(c.Context)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAMESPACE\tDIM\tRECORDS\tCREATED")
	for _, ns := range nss {
		n, err := client.CountRecords(c.Context, ns.IndexName, ns.Namespace)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", ns.IndexName, ns.Namespace, ns.Dimension, n, ns.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}
