package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockMarkdownRenderer struct {
	RenderFunc func(string, int) (string, error)
}

func (m *MockMarkdownRenderer) Render(content string, width int) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(content, width)
	}
	return content, nil
}

func TestReadInput_ReturnsTrimmedLines(t *testing.T) {
	var out bytes.Buffer
	c := NewStreamConsole(strings.NewReader("  hello world \nsecond"), &out)

	line, err := c.ReadInput(context.Background(), "You: ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", line)
	assert.Equal(t, "You: ", out.String())

	line, err = c.ReadInput(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = c.ReadInput(context.Background(), "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadInput_CancelledContext(t *testing.T) {
	c := NewStreamConsole(strings.NewReader("hi\n"), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReadInput(ctx, "> ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteMessage_UsesRenderer(t *testing.T) {
	var out bytes.Buffer
	var gotWidth int
	c := NewStreamConsole(strings.NewReader(""), &out, WithWidth(60), WithRenderer(&MockMarkdownRenderer{
		RenderFunc: func(s string, w int) (string, error) {
			gotWidth = w
			return "RENDERED " + s, nil
		},
	}))

	c.WriteMessage("Support Bot", "Order 123 is shipped")

	assert.Equal(t, 60, gotWidth)
	assert.Contains(t, out.String(), "Support Bot:")
	assert.Contains(t, out.String(), "RENDERED Order 123 is shipped")
}

func TestWriteStatus_QuietSuppresses(t *testing.T) {
	var out bytes.Buffer
	c := NewStreamConsole(strings.NewReader(""), &out, WithQuiet(true))

	c.WriteStatus("tool", "add(3, 4)")
	assert.Empty(t, out.String())

	c.WriteNotice("blocked", "❌ Sorry")
	assert.Contains(t, out.String(), "❌ Sorry")
}

func TestWriteStatus_Prints(t *testing.T) {
	var out bytes.Buffer
	c := NewStreamConsole(strings.NewReader(""), &out)

	c.WriteStatus("tool", "add(3, 4)")

	assert.Contains(t, out.String(), "add(3, 4)")
	assert.NoError(t, c.Close())
}
