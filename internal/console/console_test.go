package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"s\n":    true,
		"Si\n":   true,
		"yes\n":  true,
		"y":      true,
		"n\n":    false,
		"\n":     false,
		"":       false,
		"nope\n": false,
	}
	for in, want := range cases {
		var out bytes.Buffer
		c := New(strings.NewReader(in), &out)
		ok, err := c.Confirm(context.Background(), "¿Borrar?")
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, ok, "input %q", in)
		assert.Equal(t, "¿Borrar? [s/N]: ", out.String())
	}
}

func TestConfirm_AssumeYes(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)
	c.AssumeYes = true
	ok, err := c.Confirm(context.Background(), "¿Borrar?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, out.String())
}

func TestConfirm_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := New(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := c.Confirm(ctx, "¿Borrar?")
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfirm_CancelledPromptDoesNotStealNextAnswer(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := New(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Confirm(ctx, "¿Borrar?")
	require.ErrorIs(t, err, context.Canceled)

	for _, tc := range []struct {
		in   string
		want bool
	}{{"s\n", true}, {"n\n", false}} {
		done := make(chan bool)
		go func() {
			ok, err := c.Confirm(context.Background(), "¿Borrar?")
			assert.NoError(t, err)
			done <- ok
		}()
		_, err := io.WriteString(pw, tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, <-done, "input %q", tc.in)
	}
}

func TestConfirm_AfterEOF(t *testing.T) {
	c := New(strings.NewReader("s\n"), io.Discard)
	for _, want := range []bool{true, false, false} {
		ok, err := c.Confirm(context.Background(), "¿Borrar?")
		require.NoError(t, err)
		assert.Equal(t, want, ok)
	}
}

func TestAlertAndSuccess(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)
	c.Alert("falló")
	c.Success("listo")
	assert.Equal(t, "✗ falló\n✓ listo\n", out.String())
}
