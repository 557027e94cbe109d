// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbot/internal/config"
	"github.com/jeranaias/chatbot/internal/conversation"
)

// isolate keeps the developer's environment out of the command under test.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"CHATBOT_ENDPOINT", "CHATBOT_TIMEOUT_SECS", "CHATBOT_DARK_MODE",
		"CHATBOT_ORDERING", "CHATBOT_ADDR", "CHATBOT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return filepath.Join(t.TempDir(), "config.toml")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func generateServer(t *testing.T, status int, body string, prompts *[]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && prompts != nil {
			*prompts = append(*prompts, req.Prompt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_PrintsRawReplyWhenNotTerminal(t *testing.T) {
	cfgPath := isolate(t)
	var prompts []string
	ts := generateServer(t, http.StatusOK, `{"response":"**Hi!**"}`, &prompts)

	stdout, _, err := run(t, "ask", "--config", cfgPath, "--endpoint", ts.URL, "hello")

	require.NoError(t, err)
	assert.Equal(t, "**Hi!**\n", stdout)
	assert.Equal(t, []string{"hello"}, prompts)
}

func TestAsk_JoinsArguments(t *testing.T) {
	cfgPath := isolate(t)
	var prompts []string
	ts := generateServer(t, http.StatusOK, `{"response":"ok"}`, &prompts)

	_, _, err := run(t, "ask", "--config", cfgPath, "--endpoint", ts.URL, "what", "is", "go?")

	require.NoError(t, err)
	assert.Equal(t, []string{"what is go?"}, prompts)
}

func TestAsk_FailurePrintsFallbackAndExitsOne(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"missing response", http.StatusOK, `{"other":"x"}`},
		{"non-string response", http.StatusOK, `{"response":42}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := isolate(t)
			ts := generateServer(t, tt.status, tt.body, nil)

			stdout, _, err := run(t, "ask", "--config", cfgPath, "--endpoint", ts.URL, "hello")

			require.Error(t, err)
			assert.Equal(t, ExitGeneralError, ExitCode(err))
			assert.Equal(t, conversation.FallbackText+"\n", stdout)
		})
	}
}

func TestAsk_BlankPromptIsUsageError(t *testing.T) {
	cfgPath := isolate(t)
	var prompts []string
	ts := generateServer(t, http.StatusOK, `{"response":"ok"}`, &prompts)

	stdout, _, err := run(t, "ask", "--config", cfgPath, "--endpoint", ts.URL, "   ")

	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
	assert.Empty(t, stdout)
	assert.Empty(t, prompts, "blank prompt must not reach the endpoint")
}

func TestAsk_RequiresPrompt(t *testing.T) {
	cfgPath := isolate(t)

	_, _, err := run(t, "ask", "--config", cfgPath)

	assert.Error(t, err)
}

func TestAsk_UsesConfigFileEndpoint(t *testing.T) {
	cfgPath := isolate(t)
	ts := generateServer(t, http.StatusOK, `{"response":"from file"}`, nil)
	content := "[endpoint]\nurl = \"" + ts.URL + "\"\ntimeout_secs = 5\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))

	stdout, _, err := run(t, "ask", "--config", cfgPath, "hi")

	require.NoError(t, err)
	assert.Equal(t, "from file\n", stdout)
}

func TestAsk_EndpointFlagBeatsEnvironment(t *testing.T) {
	cfgPath := isolate(t)
	ts := generateServer(t, http.StatusOK, `{"response":"flag"}`, nil)
	t.Setenv("CHATBOT_ENDPOINT", "http://127.0.0.1:1/generate")

	stdout, _, err := run(t, "ask", "--config", cfgPath, "--endpoint", ts.URL, "hi")

	require.NoError(t, err)
	assert.Equal(t, "flag\n", stdout)
}

// =============================================================================
// CONFIG ERRORS
// =============================================================================

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
	}{
		{name: "unknown key", content: "bogus = 1\n"},
		{name: "invalid ordering", content: "[conversation]\nordering = \"random\"\n"},
		{name: "malformed toml", content: "[endpoint\n"},
		{name: "invalid endpoint flag", args: []string{"--endpoint", "not a url"}},
		{name: "invalid log level flag", args: []string{"--log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := isolate(t)
			if tt.content != "" {
				require.NoError(t, os.WriteFile(cfgPath, []byte(tt.content), 0600))
			}
			args := append([]string{"ask", "--config", cfgPath}, tt.args...)
			args = append(args, "hello")

			_, _, err := run(t, args...)

			require.Error(t, err)
			assert.Equal(t, ExitConfigError, ExitCode(err))
		})
	}
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "ask", "--no-such-flag", "hello")

	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func TestConfigInit_WritesDefaults(t *testing.T) {
	cfgPath := isolate(t)

	stdout, _, err := run(t, "config", "init", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, stdout, cfgPath)
	loaded, err := config.LoadFromPath(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)
}

func TestConfigInit_RefusesToOverwrite(t *testing.T) {
	cfgPath := isolate(t)
	require.NoError(t, os.WriteFile(cfgPath, []byte("[ui]\ndark_mode = true\n"), 0600))

	_, _, err := run(t, "config", "init", "--config", cfgPath)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, _, err = run(t, "config", "init", "--config", cfgPath, "--force")
	require.NoError(t, err)
	loaded, err := config.LoadFromPath(cfgPath)
	require.NoError(t, err)
	assert.False(t, loaded.UI.DarkMode)
}

func TestConfigShow_IncludesFlagOverrides(t *testing.T) {
	cfgPath := isolate(t)

	stdout, _, err := run(t, "config", "show", "--config", cfgPath, "--endpoint", "http://localhost:4000/generate")

	require.NoError(t, err)
	assert.Contains(t, stdout, `url = "http://localhost:4000/generate"`)
}

func TestConfigPath_PrintsPath(t *testing.T) {
	cfgPath := isolate(t)

	stdout, stderr, err := run(t, "config", "path", "--config", cfgPath)

	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", stdout)
	assert.Contains(t, stderr, "does not exist")
}

// =============================================================================
// VERSION
// =============================================================================

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "chatbot "+Version+"\n"))
	assert.Contains(t, stdout, "commit: "+GitCommit)
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := run(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "chatbot "+Version)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestOptionsApply(t *testing.T) {
	newCmd := func(opts *Options) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().BoolVar(&opts.Dark, "dark", false, "")
		return cmd
	}

	t.Run("unset flags keep config", func(t *testing.T) {
		opts := &Options{}
		cmd := newCmd(opts)
		require.NoError(t, cmd.Flags().Parse(nil))
		cfg := config.Default()
		cfg.UI.DarkMode = true

		opts.apply(cmd, cfg)

		assert.True(t, cfg.UI.DarkMode)
		assert.Equal(t, config.Default().Endpoint.URL, cfg.Endpoint.URL)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		opts := &Options{Endpoint: "http://localhost:4000/generate", LogLevel: "debug"}
		cmd := newCmd(opts)
		require.NoError(t, cmd.Flags().Parse([]string{"--dark=false"}))
		cfg := config.Default()
		cfg.UI.DarkMode = true

		opts.apply(cmd, cfg)

		assert.False(t, cfg.UI.DarkMode)
		assert.Equal(t, "http://localhost:4000/generate", cfg.Endpoint.URL)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", usageError(errors.New("bad flag")), ExitUsageError},
		{"config", configError(errors.New("bad file")), ExitConfigError},
		{"validation", config.ValidateErrors{{Field: "log.level", Message: "bad"}}, ExitConfigError},
		{"wrapped exit", &ExitError{Code: 7, Err: errors.New("x")}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestTUILogFile(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, filepath.Join("/home/x/.chatbot", logFileName), tuiLogFile(cfg, "/home/x/.chatbot/config.toml"))

	cfg.Log.File = "/var/log/chatbot.log"
	assert.Equal(t, "/var/log/chatbot.log", tuiLogFile(cfg, "/home/x/.chatbot/config.toml"))
}

func TestStyledOutput_NotForBuffers(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, StyledOutput(&buf))
	assert.Equal(t, DefaultTerminalWidth, TerminalWidth(&buf))
}
