package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/tesso57/feedlist/internal/application/settings"
	"github.com/tesso57/feedlist/internal/application/usecase"
	"github.com/tesso57/feedlist/internal/infrastructure/config"
	"github.com/tesso57/feedlist/internal/infrastructure/feed"
	"github.com/tesso57/feedlist/internal/infrastructure/importlog"
	"github.com/tesso57/feedlist/internal/infrastructure/logging"
	"github.com/tesso57/feedlist/internal/infrastructure/opml"
	"github.com/tesso57/feedlist/internal/presentation/cli"
)

type app struct {
	ctx           context.Context
	out           io.Writer
	settings      settings.Settings
	subscriptions usecase.SubscriptionService
	importer      usecase.ImportService
	ledger        *importlog.Manager
	render        cli.Renderer
	logger        *logrus.Logger
}

func newApp(ctx context.Context, flags CLI, stdout, stderr io.Writer) (*app, error) {
	store, err := config.Load(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := store.Settings

	logger := logging.New(stderr, cfg.LogLevel, flags.Verbose)
	logger.WithField("config", store.Path()).Debug("loaded config")

	client := feed.NewClient(cfg.Import.UserAgent, cfg.Import.MaxDocumentBytes)
	client.HTTPClient.Timeout = cfg.Import.Timeout()

	ledger := importlog.NewManager(cfg.ImportLogFile)
	subscriptions := usecase.NewSubscriptionService(store)

	return new(app{
		ctx:           ctx,
		out:           stdout,
		settings:      cfg,
		subscriptions: subscriptions,
		importer: usecase.ImportService{
			Subscriptions: subscriptions,
			Parse:         opml.Parse,
			Fetcher:       client,
			Prober:        client,
			Log:           ledger,
			Logger:        logger,
			ProbeOptions: usecase.ProbeOptions{
				Concurrency:   cfg.Import.ProbeConcurrency,
				RatePerSecond: cfg.Import.ProbeRate,
				Timeout:       cfg.Import.Timeout(),
			},
		},
		ledger: ledger,
		render: cli.NewRenderer(cfg.Theme, flags.Width),
		logger: logger,
	}), nil
}

func (a *app) Close() error {
	return a.ledger.Close()
}

func (a *app) print(s string) error {
	_, err := io.WriteString(a.out, s)
	return err
}

// ShowCmd prints a parsed feed list without importing it.
type ShowCmd struct {
	Source string `arg:"" help:"OPML file path or http(s) URL."`
}

// Run executes the command.
func (c *ShowCmd) Run(a *app) error {
	list, err := a.importer.Preview(a.ctx, c.Source)
	if err != nil {
		return err
	}
	return a.print(a.render.FeedList(list))
}

// ImportCmd merges a feed list into the subscriptions.
type ImportCmd struct {
	Source          string `arg:"" help:"OPML file path or http(s) URL."`
	Group           string `help:"Put every imported feed in this group."`
	GroupByTitle    bool   `help:"Group imported feeds under the document title."`
	GroupByCategory bool   `help:"Group imported feeds by their enclosing outline."`
	Probe           bool   `help:"Check every feed before adding it."`
	DryRun          bool   `help:"Report what would be imported without saving."`
}

// Run executes the command.
func (c *ImportCmd) Run(a *app) error {
	res, err := a.importer.Import(a.ctx, c.Source, usecase.ImportOptions{
		Group:           c.Group,
		GroupByTitle:    c.GroupByTitle || a.settings.Import.GroupByTitle,
		GroupByCategory: c.GroupByCategory,
		Probe:           c.Probe || a.settings.Import.Probe,
		DryRun:          c.DryRun,
	})
	if err != nil {
		return err
	}
	return a.print(a.render.ImportResult(res))
}

// ListCmd prints the subscriptions.
type ListCmd struct{}

// Run executes the command.
func (c *ListCmd) Run(a *app) error {
	groups, _, err := a.subscriptions.ListGroups()
	if err != nil {
		return err
	}
	feeds, err := a.subscriptions.List()
	if err != nil {
		return err
	}
	return a.print(a.render.Subscriptions(groups, feeds))
}

// RemoveCmd removes an ungrouped subscription.
type RemoveCmd struct {
	Number int `arg:"" help:"Number shown by the list command."`
}

// Run executes the command.
func (c *RemoveCmd) Run(a *app) error {
	feeds, err := a.subscriptions.Remove(c.Number - 1)
	if err != nil {
		return err
	}
	a.logger.WithField("remaining", len(feeds)).Info("removed subscription")
	return nil
}

// HistoryCmd prints recent imports.
type HistoryCmd struct {
	Limit int `help:"Number of imports to show (0 for all)." default:"10"`
}

// Run executes the command.
func (c *HistoryCmd) Run(a *app) error {
	runs, err := a.importer.History(a.ctx, c.Limit)
	if err != nil {
		return err
	}
	return a.print(a.render.History(runs))
}
