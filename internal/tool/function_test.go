package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addRequest struct {
	A int `json:"a" description:"first operand"`
	B int `json:"b" description:"second operand"`
}

type searchRequest struct {
	Query      string   `json:"query"`
	MaxResults int      `json:"max_results,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Mode       string   `json:"mode,omitempty" enum:"fast,deep"`
	internal   string
	Skipped    string `json:"-"`
}

type positiveRequest struct {
	N int `json:"n"`
}

func (r positiveRequest) Validate() error {
	if r.N <= 0 {
		return fmt.Errorf("n must be positive, got %d", r.N)
	}
	return nil
}

func TestSchemaFor_Struct(t *testing.T) {
	s := SchemaFor[searchRequest]()

	assert.Equal(t, TypeObject, s.Type)
	assert.Equal(t, []string{"query"}, s.Required)
	require.Contains(t, s.Properties, "query")
	assert.Equal(t, TypeString, s.Properties["query"].Type)
	assert.Equal(t, TypeInteger, s.Properties["max_results"].Type)
	assert.Equal(t, TypeArray, s.Properties["tags"].Type)
	assert.Equal(t, TypeString, s.Properties["tags"].Items.Type)
	assert.Equal(t, []string{"fast", "deep"}, s.Properties["mode"].Enum)
	assert.NotContains(t, s.Properties, "internal")
	assert.NotContains(t, s.Properties, "Skipped")
}

func TestSchemaFor_Descriptions(t *testing.T) {
	s := SchemaFor[addRequest]()
	assert.Equal(t, "first operand", s.Properties["a"].Description)
	assert.ElementsMatch(t, []string{"a", "b"}, s.Required)
}

func TestFunction_DecodeAndExecute(t *testing.T) {
	add := NewFunction("add", "Add two integers", func(ctx context.Context, req addRequest) (string, error) {
		return fmt.Sprintf("%d", req.A+req.B), nil
	})

	decl := add.Declaration()
	assert.Equal(t, "add", decl.Name)
	assert.Equal(t, "Add two integers", decl.Description)

	// JSON numbers arrive as float64, strings are accepted in weak mode.
	input, err := add.Decode(map[string]any{"a": float64(3), "b": "4"})
	require.NoError(t, err)

	res, err := add.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "7", res.LLMContent())
	assert.Equal(t, "7", res.Display())
}

func TestFunction_Decode_MissingRequired(t *testing.T) {
	add := NewFunction("add", "", func(ctx context.Context, req addRequest) (string, error) {
		return "", nil
	})

	_, err := add.Decode(map[string]any{"a": 1})
	assert.True(t, errors.Is(err, ErrInvalidArguments))
	assert.Contains(t, err.Error(), "b")
}

func TestFunction_Decode_WrongType(t *testing.T) {
	add := NewFunction("add", "", func(ctx context.Context, req addRequest) (string, error) {
		return "", nil
	})

	_, err := add.Decode(map[string]any{"a": "three", "b": 4})
	assert.True(t, errors.Is(err, ErrInvalidArguments))
}

func TestFunction_Decode_Validator(t *testing.T) {
	fn := NewFunction("pos", "", func(ctx context.Context, req positiveRequest) (string, error) {
		return "ok", nil
	})

	_, err := fn.Decode(map[string]any{"n": -1})
	assert.True(t, errors.Is(err, ErrInvalidArguments))
	assert.Contains(t, err.Error(), "must be positive")

	_, err = fn.Decode(map[string]any{"n": 2})
	assert.NoError(t, err)
}

func TestFunction_Execute_HandlerError(t *testing.T) {
	boom := errors.New("no credentials")
	fn := NewFunction("fail", "", func(ctx context.Context, req addRequest) (string, error) {
		return "", Fatal(boom)
	})

	_, err := fn.Execute(context.Background(), addRequest{})
	assert.True(t, IsFatal(err))
	assert.True(t, errors.Is(err, boom))
}

func TestFunction_Execute_CancelledContext(t *testing.T) {
	called := false
	fn := NewFunction("noop", "", func(ctx context.Context, req addRequest) (string, error) {
		called = true
		return "", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fn.Execute(ctx, addRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestFunction_Execute_WrongInputType(t *testing.T) {
	fn := NewFunction("noop", "", func(ctx context.Context, req addRequest) (string, error) {
		return "", nil
	})

	_, err := fn.Execute(context.Background(), "not a request")
	assert.Error(t, err)
}

func TestFatal_Nil(t *testing.T) {
	assert.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
}
