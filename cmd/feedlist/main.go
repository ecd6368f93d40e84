// Command feedlist reads OPML subscription lists and imports their feeds.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/tesso57/feedlist/internal/infrastructure/opml"
)

// CLI is the command-line surface.
type CLI struct {
	Config  string `help:"Config file path." type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging."`
	Width   int    `help:"Truncate output lines to this width (0 disables)." default:"0"`

	Show    ShowCmd    `cmd:"" help:"Parse a feed list and print its feeds."`
	Import  ImportCmd  `cmd:"" help:"Import feeds from an OPML file or URL."`
	List    ListCmd    `cmd:"" help:"List subscriptions."`
	Remove  RemoveCmd  `cmd:"" help:"Remove an ungrouped subscription by number."`
	History HistoryCmd `cmd:"" help:"Show recent imports."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, opml.ErrMalformedDocument) {
			fmt.Fprintln(os.Stderr, "feedlist: document is not a usable feed list:", err)
		} else {
			fmt.Fprintln(os.Stderr, "feedlist:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags CLI
	parser, err := kong.New(&flags,
		kong.Name("feedlist"),
		kong.Description("Read OPML subscription lists and import their feeds."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, flags, stdout, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return kctx.Run(a)
}
