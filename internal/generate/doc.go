// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generate provides the HTTP client for the remote text-generation
// service.
//
// The service contract is a single JSON round-trip:
//
//	POST <endpoint>  {"prompt": "..."}
//	200 OK           {"response": "..."}
//
// Any other outcome (transport failure, timeout, non-2xx status, body that is
// not an object with a string "response") is reported as a *ClientError.
//
// # Key Components
//
//   - Client: thread-safe client; implements conversation.Generator
//   - ClientConfig: endpoint URL and timeout, with defaults for zero values
//   - ClientError / ErrorType: categorised failures for logging
package generate
