// Package generate drafts an item title and description from a short idea.
package generate

import (
	"context"
	"errors"
	"strings"

	"github.com/idilsaglam/questlog/internal/model"
)

var (
	ErrEmptyPrompt   = errors.New("enter a theme or idea to generate from")
	ErrNotConfigured = errors.New("AI generation is not configured")
)

// Suggestion is a drafted title and description.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generator turns a prompt into a Suggestion. Implementations may fail;
// callers must leave their own fields untouched when they do.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Suggestion, error)
}

// Fill returns f with title and description replaced by a successful
// generation. On error f is returned unchanged alongside the error.
func Fill[C model.Category](ctx context.Context, g Generator, prompt string, f model.Fields[C]) (model.Fields[C], error) {
	if g == nil {
		return f, ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return f, ErrEmptyPrompt
	}
	s, err := g.Generate(ctx, prompt)
	if err != nil {
		return f, err
	}
	f.Title = s.Title
	f.Description = s.Description
	return f, nil
}

// SystemPrompt is the instruction sent for each collection kind.
func SystemPrompt(kind model.Kind) string {
	if kind == model.KindQuest {
		return "You are a quest giver in a fantasy role-playing world. " +
			"Generate a short, evocative quest title and a detailed quest description based on the player's idea. " +
			`Reply with a JSON object {"title": string, "description": string}.`
	}
	return "You are an assistant for a software development team. " +
		"Generate a concise task title and a detailed description for a software development task based on the prompt. " +
		`Reply with a JSON object {"title": string, "description": string}.`
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt string) (Suggestion, error)

func (f Func) Generate(ctx context.Context, prompt string) (Suggestion, error) {
	return f(ctx, prompt)
}
