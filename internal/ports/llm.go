package ports

import "context"

// InterpretInput describes the daily card to write an extended meaning for.
type InterpretInput struct {
	CardName string
	Reversed bool
	Keywords []string
	Meaning  string
	Date     string
}

// InterpretOutput is the structured extended meaning returned by the LLM.
type InterpretOutput struct {
	Text  string `json:"text"`
	Model string `json:"-"`
}

// Interpreter writes extended meanings for premium readers via an LLM.
type Interpreter interface {
	Interpret(ctx context.Context, in InterpretInput) (InterpretOutput, error)
}
