package files

import "context"

// Prompter stands in for the host's picker dialog. It returns the name the
// user chose, or ErrUserCancelled.
type Prompter interface {
	Choose(ctx context.Context, suggested string) (string, error)
}

type choiceKey struct{}

// WithChoice records the answer to the next picker prompt on ctx.
func WithChoice(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, choiceKey{}, name)
}

// ContextPrompter answers prompts from the choice stored by WithChoice. An
// absent or empty choice is a cancellation.
type ContextPrompter struct{}

func (ContextPrompter) Choose(ctx context.Context, _ string) (string, error) {
	name, _ := ctx.Value(choiceKey{}).(string)
	if name == "" {
		return "", ErrUserCancelled
	}
	return name, nil
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, suggested string) (string, error)

func (f PrompterFunc) Choose(ctx context.Context, suggested string) (string, error) {
	return f(ctx, suggested)
}
