// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/generate"
	"github.com/jeranaias/chatbot/internal/markup"
)

// errEmptyPrompt is returned when ask is given only whitespace.
var errEmptyPrompt = errors.New("prompt is empty")

func newAskCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>...",
		Short: "Send one prompt and print the reply",
		Long: `Send one prompt and print the reply. The reply is rendered as Markdown when
stdout is a terminal and printed as-is otherwise. A failed request prints the
fallback text and exits with status 1.`,
		Example: `  chatbot ask "What is the capital of France?"
  chatbot ask --endpoint http://localhost:4000/generate hello`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}
}

func runAsk(cmd *cobra.Command, opts *Options, prompt string) error {
	cfg, _, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if err := initLogging(cfg, cmd.ErrOrStderr(), cfg.Log.File); err != nil {
		return err
	}

	client := generate.NewClientWithConfig(clientConfig(cfg))
	store := conversation.NewStoreWithConfig(conversation.Config{
		Ordering: ordering(cfg),
		DarkMode: cfg.UI.DarkMode,
	})

	req, ok := store.Send(prompt)
	if !ok {
		return usageError(errEmptyPrompt)
	}
	outcome := conversation.Dispatch(commandContext(cmd), client, req)
	store.Settle(outcome)

	reply, ok := store.Snapshot().LastBotMessage()
	if !ok {
		return errors.New("no reply recorded")
	}

	out := cmd.OutOrStdout()
	text := reply.Text
	if StyledOutput(out) {
		text = markup.NewTermRenderer().Render(text, TerminalWidth(out), cfg.UI.DarkMode)
	}
	fmt.Fprintln(out, text)

	if outcome.Failed() {
		log.Debug().Err(outcome.Err).Str("type", generate.TypeOf(outcome.Err).String()).Msg("ask failed")
		return &ExitError{Code: ExitGeneralError, Err: errors.Wrap(outcome.Err, "request failed")}
	}
	return nil
}
