package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEventModel(copied *[]string) eventListModel {
	cols := []Column{{Title: "Seq", Width: 4}, {Title: "Event", Width: 10}}
	rows := []EventRow{
		{Cells: Row{"1", "Transfer"}, Kind: "Transfer", Receipt: "rcpt_01", From: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
		{Cells: Row{"2", "Approval"}, Kind: "Approval", Receipt: "rcpt_02", From: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		{Cells: Row{"3", "Transfer"}, Kind: "Transfer", Receipt: "rcpt_02", From: "0xcccccccccccccccccccccccccccccccccccccccc"},
	}
	m := newEventListModel("Events", cols, rows)
	m.copy = func(s string) error {
		*copied = append(*copied, s)
		return nil
	}
	return m
}

func press(t *testing.T, m eventListModel, keys ...string) eventListModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(eventListModel)
	}
	return m
}

func TestEventListNavigationClamps(t *testing.T) {
	var copied []string
	m := testEventModel(&copied)

	m = press(t, m, "up")
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, "down", "down", "down", "down")
	assert.Equal(t, 2, m.cursor)

	m = press(t, m, "g")
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "G")
	assert.Equal(t, 2, m.cursor)
}

func TestEventListFilterCycles(t *testing.T) {
	var copied []string
	m := testEventModel(&copied)
	m = press(t, m, "G")

	m = press(t, m, "f")
	assert.Equal(t, []int{0, 2}, m.visible)
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "showing Transfer only")

	m = press(t, m, "f")
	assert.Equal(t, []int{1}, m.visible)
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, "f")
	assert.Len(t, m.visible, 3)
}

func TestEventListCopy(t *testing.T) {
	var copied []string
	m := testEventModel(&copied)

	m = press(t, m, "down", "c", "a")
	require.Len(t, copied, 2)
	assert.Equal(t, "rcpt_02", copied[0])
	assert.Equal(t, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", copied[1])
	assert.Contains(t, m.flash, "Copied")
}

func TestEventListCopyFailure(t *testing.T) {
	var copied []string
	m := testEventModel(&copied)
	m.copy = func(string) error { return errors.New("no clipboard") }

	m = press(t, m, "c")
	assert.Equal(t, "Copy failed: no clipboard", m.flash)
	assert.Contains(t, m.View(), "Copy failed")
}

func TestEventListEmpty(t *testing.T) {
	m := newEventListModel("Events", []Column{{Title: "Seq", Width: 4}}, nil)
	m = press(t, m, "down", "c")
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, "No receipt id", m.flash)
}

func TestEventListViewShowsControls(t *testing.T) {
	var copied []string
	view := testEventModel(&copied).View()
	assert.Contains(t, view, "Events")
	assert.Contains(t, view, "Approval")
	assert.Contains(t, view, "copy receipt")
}

func TestEventListQuit(t *testing.T) {
	var copied []string
	_, cmd := testEventModel(&copied).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
