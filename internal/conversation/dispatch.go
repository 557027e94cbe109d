// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoGenerator is returned in an Outcome when Dispatch is called without a generator.
var ErrNoGenerator = errors.New("no generator configured")

// Generator produces a reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Dispatch performs the generation call for req and packages the result.
// It blocks; callers run it asynchronously and pass the Outcome to Settle.
func Dispatch(ctx context.Context, gen Generator, req Request) Outcome {
	out := Outcome{RequestID: req.ID, Epoch: req.Epoch}
	if gen == nil {
		out.Err = ErrNoGenerator
		return out
	}
	text, err := gen.Generate(ctx, req.Prompt)
	if err != nil {
		out.Err = err
		return out
	}
	out.Text = text
	return out
}
