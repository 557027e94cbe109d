// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server serves the chat as a browser page.
//
// Each browser is tracked by a session cookie and owns its own
// conversation store. Store changes are rendered to an HTML fragment and
// pushed to the browser's open WebSockets through a hub.
//
// # Endpoints
//
//   - GET  /            - the chat page
//   - GET  /ws          - transcript push socket
//   - GET  /api/state   - JSON snapshot of the session
//   - POST /api/send    - submit a draft ({"draft": "..."})
//   - POST /api/clear   - start a new chat
//   - POST /api/sidebar - toggle the side panel
//   - POST /api/theme   - toggle or set ({"dark": true}) the theme
//   - GET  /health      - liveness
//
// # Usage
//
//	srv, err := server.New(server.DefaultConfig(), client)
//	if err != nil {
//		return err
//	}
//	g.Go(func() error { return srv.Run(ctx) })
//	g.Go(func() error { return srv.Janitor(ctx) })
package server
