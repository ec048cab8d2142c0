package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withInput(t *testing.T, s string) {
	t.Helper()
	prev := Input
	Input = strings.NewReader(s)
	t.Cleanup(func() { Input = prev })
}

func TestConfirmAnswers(t *testing.T) {
	cases := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		" yes \n": true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"maybe\n": false,
	}
	for in, want := range cases {
		withInput(t, in)
		assert.Equal(t, want, Confirm("proceed?"), "input %q", in)
	}
}

func TestConfirmDanger(t *testing.T) {
	withInput(t, "y\n")
	assert.True(t, ConfirmDanger("remove wallet?"))
}

func TestPromptInputTrims(t *testing.T) {
	withInput(t, "  my-wallet \n")
	assert.Equal(t, "my-wallet", PromptInput("name"))
}

func TestDangerBoxFramesContent(t *testing.T) {
	box := DangerBox("secret")
	assert.Contains(t, box, "secret")
	assert.Contains(t, box, "╭")
}
