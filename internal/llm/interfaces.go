// Package llm talks to the conversational assistant behind the chat
// surface. The assistant is opaque: text goes in, text comes out.
package llm

import "context"

// TextGenerator completes a single prompt.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}
