// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires configuration, logging and the conversation core into
// the chatbot commands.
//
// # Commands
//
//   - chatbot          - terminal chat (Bubble Tea)
//   - chatbot serve    - browser chat over HTTP and WebSocket
//   - chatbot ask      - one prompt, reply on stdout
//   - chatbot config   - show, locate or create the config file
//   - chatbot version  - build information
//
// Persistent flags --config, --endpoint, --log-level and --dark override
// the config file and CHATBOT_* environment variables.
package cli
