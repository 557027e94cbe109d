// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbot/internal/config"
	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/generate"
	"github.com/jeranaias/chatbot/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// logFileName is the TUI's log file inside the config directory.
const logFileName = "chatbot.log"

// =============================================================================
// OPTIONS
// =============================================================================

// Options holds the persistent flag values.
type Options struct {
	ConfigPath string
	Endpoint   string
	LogLevel   string
	Dark       bool
}

// configPath returns the --config value or the default location.
func (o *Options) configPath() (string, error) {
	if o.ConfigPath != "" {
		return o.ConfigPath, nil
	}
	return config.ConfigPath()
}

// load reads the config file and applies flag overrides on top.
func (o *Options) load(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := o.configPath()
	if err != nil {
		return nil, "", configError(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", configError(err)
	}
	o.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", configError(errors.Wrap(err, "invalid flags"))
	}
	return cfg, path, nil
}

// apply overrides cfg with any flags set on the command line. It is also
// used on reloaded configs so flags keep precedence.
func (o *Options) apply(cmd *cobra.Command, cfg *config.Config) {
	if o.Endpoint != "" {
		cfg.Endpoint.URL = o.Endpoint
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if cmd.Flags().Changed("dark") {
		cfg.UI.DarkMode = o.Dark
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

func clientConfig(cfg *config.Config) *generate.ClientConfig {
	return &generate.ClientConfig{
		Endpoint: cfg.Endpoint.URL,
		Timeout:  cfg.Endpoint.Timeout(),
	}
}

func ordering(cfg *config.Config) conversation.Ordering {
	o, err := conversation.ParseOrdering(cfg.Conversation.Ordering)
	if err != nil {
		return conversation.OrderResolution
	}
	return o
}

// initLogging installs the global logger. console may be nil to log only
// to the file.
func initLogging(cfg *config.Config, console io.Writer, file string) error {
	err := logging.Init(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    file,
		Console: console,
	})
	return errors.Wrap(err, "init logging")
}

// tuiLogFile returns where the terminal UI logs: the configured file, or
// chatbot.log next to the config file.
func tuiLogFile(cfg *config.Config, configPath string) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(filepath.Dir(configPath), logFileName)
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:   "chatbot",
		Short: "Chat with a text generation endpoint",
		Long: `chatbot sends each message to a remote generation endpoint and shows the
reply as Markdown. Run it without a command for the terminal UI, or use
"serve" for the browser UI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.Version = Version
	root.SetVersionTemplate(versionString())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.chatbot/config.toml)")
	flags.StringVar(&opts.Endpoint, "endpoint", "", "generation endpoint URL")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.Dark, "dark", false, "start in dark mode")

	root.AddCommand(
		newServeCommand(opts),
		newAskCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCode(err)
	}
	return ExitSuccess
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
