package tool

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Validator is implemented by request types that check their own fields.
type Validator interface {
	Validate() error
}

// Handler is a typed tool handler. The returned string is fed to the model.
type Handler[Req any] func(ctx context.Context, req Req) (string, error)

// Function adapts a typed Handler to the Tool interface.
//
// The input schema is derived from Req's struct tags: `json` names the
// property, `omitempty` makes it optional, `description` and `enum` (comma
// separated) document it. Arguments are decoded with mapstructure in weak
// mode so that "3" satisfies an int field.
type Function[Req any] struct {
	name        string
	description string
	params      *Schema
	handler     Handler[Req]
}

// NewFunction creates a typed function-backed tool.
func NewFunction[Req any](name, description string, handler Handler[Req]) *Function[Req] {
	return &Function[Req]{
		name:        name,
		description: description,
		params:      SchemaFor[Req](),
		handler:     handler,
	}
}

func (f *Function[Req]) Name() string {
	return f.name
}

func (f *Function[Req]) Declaration() Declaration {
	return Declaration{
		Name:        f.name,
		Description: f.description,
		Parameters:  f.params,
	}
}

// Decode converts model-supplied arguments into a Req.
func (f *Function[Req]) Decode(args map[string]any) (any, error) {
	var req Req

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := decoder.Decode(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	if missing := missingRequired(f.params, args); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required %v", ErrInvalidArguments, missing)
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
	}

	return req, nil
}

// Execute runs the handler with a decoded Req.
func (f *Function[Req]) Execute(ctx context.Context, input any) (Result, error) {
	req, ok := input.(Req)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected input type %T", f.name, input)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := f.handler(ctx, req)
	if err != nil {
		return nil, err
	}
	return TextResult(out), nil
}

func missingRequired(params *Schema, args map[string]any) []string {
	if params == nil {
		return nil
	}
	var missing []string
	for _, name := range params.Required {
		if v, ok := args[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	return missing
}
