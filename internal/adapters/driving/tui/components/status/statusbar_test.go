package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/keymap"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilDefaults(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
}

func TestBar_SetState(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetState(StateWatching)

	assert.Equal(t, StateWatching, bar.State())
}

func TestBar_SetMessage(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetMessage("scan.pdf")

	assert.Equal(t, "scan.pdf", bar.Message())
}

func TestBar_SetJobCount(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetJobCount(3)

	assert.Equal(t, 3, bar.JobCount())
}

func TestBar_SetWidth(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetWidth(120)

	assert.Equal(t, 120, bar.Width())
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetJobCount(5)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.JobCount())
}

func TestBar_View_Ready(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetJobCount(3)

	view := bar.View()

	assert.Contains(t, view, "3 jobs")
}

func TestBar_View_ReadyEmpty(t *testing.T) {
	bar := NewBar(nil, nil)

	view := bar.View()

	assert.Contains(t, view, "Ready")
}

func TestBar_View_Watching(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateWatching)
	bar.SetMessage("scan.pdf")

	view := bar.View()

	assert.Contains(t, view, "scan.pdf")
	assert.Contains(t, view, "cancel job")
}

func TestBar_View_Error(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("engine not found")

	view := bar.View()

	assert.Contains(t, view, "Error: engine not found")
}

func TestBar_View_Done(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateDone)

	view := bar.View()

	assert.Contains(t, view, "Done")
}

func TestBar_Update_IsPassive(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(nil)

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}
