// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot/internal/config"
	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/generate"
	"github.com/jeranaias/chatbot/internal/ui/chat"
)

// runTUI starts the terminal chat. Logs go to a file so they never draw
// over the screen.
func runTUI(cmd *cobra.Command, opts *Options) error {
	cfg, path, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(cfg, nil, tuiLogFile(cfg, path)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	client := generate.NewClientWithConfig(clientConfig(cfg))
	store := conversation.NewStoreWithConfig(conversation.Config{
		Ordering: ordering(cfg),
		DarkMode: cfg.UI.DarkMode,
	})

	m := chat.New(store, client).
		WithContext(ctx).
		WithWordWrap(cfg.UI.WordWrap)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	go func() {
		err := config.Watch(ctx, path, func(next *config.Config) {
			opts.apply(cmd, next)
			client.Reconfigure(clientConfig(next))
			store.SetOrdering(ordering(next))
			p.Send(chat.ConfigReloadedMsg{WordWrap: next.UI.WordWrap})
			log.Info().Str("endpoint", next.Endpoint.URL).Msg("config reloaded")
		})
		if err != nil {
			log.Warn().Err(err).Msg("config watcher stopped")
		}
	}()

	log.Info().Str("endpoint", cfg.Endpoint.URL).Msg("starting terminal UI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "error running terminal UI")
	}
	return nil
}
