package output

import (
	"context"

	"github.com/charmbracelet/huh"
)

// Prompter asks the user yes/no questions.
type Prompter interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// FormPrompter prompts on the terminal.
type FormPrompter struct{}

// Confirm implements Prompter. The answer defaults to no.
func (FormPrompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return ok, nil
}
