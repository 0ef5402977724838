// Package main is the ConvergeX Pay command line client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/convergex-pay/internal/apiclient"
	"github.com/go-petr/convergex-pay/internal/app"
	"github.com/go-petr/convergex-pay/internal/middleware"
	"github.com/go-petr/convergex-pay/internal/notify"
	"github.com/go-petr/convergex-pay/pkg/configpkg"
)

type navigator struct {
	out io.Writer
}

func (n navigator) ToLogin() {
	fmt.Fprintln(n.out, "Run `convergex login` to sign in again.")
}

func main() {
	configDir := flag.String("config", "./configs", "directory holding app.env")
	verbose := flag.Bool("v", false, "log backend calls")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	config, err := configpkg.Load(*configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)
	if !*verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, config,
		app.WithLogger(logger),
		app.WithNotifier(notify.NewWriter(os.Stderr)),
		app.WithNavigator(navigator{out: os.Stderr}),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot build client")
	}
	defer a.Close()

	c := &cli{app: a, out: os.Stdout}

	if err := c.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		// Backend failures were already shown by the notifier.
		var apiErr *apiclient.Error
		if !errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		}

		a.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: convergex [-config dir] [-v] <command> [flags]\n\ncommands:\n")

	for _, name := range commandNames() {
		fmt.Fprintf(os.Stderr, "  %-11s %s\n", name, commands[name].summary)
	}
}
