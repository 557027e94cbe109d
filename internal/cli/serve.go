// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/chatbot/internal/config"
	"github.com/jeranaias/chatbot/internal/generate"
	"github.com/jeranaias/chatbot/internal/server"
)

func newServeCommand(opts *Options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat as a web page",
		Long: `Serve the chat over HTTP. Each browser gets its own conversation; replies
are pushed to the page over a WebSocket.`,
		Example: `  chatbot serve
  chatbot serve --addr 0.0.0.0:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *Options, addr string) error {
	cfg, path, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := initLogging(cfg, cmd.ErrOrStderr(), cfg.Log.File); err != nil {
		return err
	}

	client := generate.NewClientWithConfig(clientConfig(cfg))
	logger := log.Logger
	srv, err := server.New(server.Config{
		Addr:       cfg.Server.Addr,
		SessionTTL: cfg.Server.SessionTTL(),
		Ordering:   ordering(cfg),
		DarkMode:   cfg.UI.DarkMode,
		Logger:     &logger,
	}, client)
	if err != nil {
		return errors.Wrap(err, "create server")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		return srv.Janitor(ctx)
	})
	g.Go(func() error {
		err := config.Watch(ctx, path, func(next *config.Config) {
			opts.apply(cmd, next)
			client.Reconfigure(clientConfig(next))
			srv.SetOrdering(ordering(next))
			log.Info().Str("endpoint", next.Endpoint.URL).Msg("config reloaded")
		})
		if err != nil {
			// Serving continues without live reload.
			log.Warn().Err(err).Msg("config watcher stopped")
		}
		return nil
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Serving chat on http://%s\n", cfg.Server.Addr)
	return g.Wait()
}
