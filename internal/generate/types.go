// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generate

import "encoding/json"

// =============================================================================
// WIRE TYPES
// =============================================================================

// GenerateRequest is the body sent to the generation endpoint.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the body returned by the generation endpoint.
// Response is kept raw so that a missing or non-string value can be told apart
// from an empty reply.
type GenerateResponse struct {
	Response json.RawMessage `json:"response"`
}

// Text extracts the reply text. It returns false when the field is missing,
// null, or not a JSON string.
func (r GenerateResponse) Text() (string, bool) {
	if len(r.Response) == 0 || string(r.Response) == "null" {
		return "", false
	}
	var text string
	if err := json.Unmarshal(r.Response, &text); err != nil {
		return "", false
	}
	return text, true
}
