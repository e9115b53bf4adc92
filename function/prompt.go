package function

import (
	"context"
	"strings"

	"github.com/subframe7536/yaak/template"
)

// PromptRequest describes a single-line text prompt.
type PromptRequest struct {
	Title        string
	Label        string
	Placeholder  string
	DefaultValue string
	Password     bool
}

// Prompter asks the user for text. It reports ok=false when the user
// dismisses the prompt.
type Prompter interface {
	Prompt(ctx context.Context, req PromptRequest) (value string, ok bool, err error)
}

// Prompt asks the user for a value each time it is rendered for sending.
// Previews never prompt and render the default value instead.
type Prompt struct {
	Prompter Prompter
}

// NewPrompt returns the prompt function backed by p.
func NewPrompt(p Prompter) Prompt { return Prompt{Prompter: p} }

func (Prompt) Descriptor() template.FunctionDescriptor {
	return template.FunctionDescriptor{
		Name:        "prompt.text",
		Description: "Prompt the user for input when sending a request",
		Args: []template.ArgDescriptor{
			{Name: "title", Label: "Title", Optional: true},
			{Name: "label", Label: "Label", Placeholder: "Enter a value"},
			{Name: "defaultValue", Label: "Default Value", Optional: true},
			{Name: "placeholder", Label: "Placeholder", Optional: true},
			{Name: "password", Label: "Hide Input", Placeholder: "true", Optional: true},
		},
	}
}

func (p Prompt) Run(ctx context.Context, call Call) (string, error) {
	req := PromptRequest{
		Title:        call.Arg("title"),
		Label:        call.Arg("label"),
		Placeholder:  call.Arg("placeholder"),
		DefaultValue: call.Arg("defaultValue"),
		Password:     strings.EqualFold(call.Arg("password"), "true"),
	}

	if call.Window.Purpose == PurposePreview {
		return req.DefaultValue, nil
	}

	value, ok, err := p.Prompter.Prompt(ctx, req)
	if err != nil {
		return "", template.ErrFunctionFailed.Wrap(err)
	}

	if !ok {
		return "", template.ErrFunctionFailed.Wrap(context.Canceled)
	}

	return value, nil
}
