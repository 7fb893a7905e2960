package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenter_AppendAndDrainByRegion(t *testing.T) {
	c := NewCenter(nil)
	c.Append("saved", Success, 5, "alert-container")
	c.Append("try again", Danger, 10, "alert-container")
	c.Append("sidebar note", Info, 3, "sidebar")

	main := c.Drain("alert-container")
	require.Len(t, main, 2)
	assert.Equal(t, "saved", main[0].Message)
	assert.Equal(t, Success, main[0].Severity)
	assert.Equal(t, 10, main[1].DurationSeconds)
	assert.NotEmpty(t, main[0].ID)

	// draining empties the region
	assert.Empty(t, c.Drain("alert-container"))

	side := c.Drain("sidebar")
	require.Len(t, side, 1)
	assert.Equal(t, Info, side[0].Severity)
}

func TestCenter_EmptyRegionFallsBackToDefault(t *testing.T) {
	c := NewCenter(nil)
	c.Append("hello", Warning, 5, "")

	drained := c.Drain(DefaultRegion)
	require.Len(t, drained, 1)
	assert.Equal(t, DefaultRegion, drained[0].Region)
}

func TestCenter_DrainAll(t *testing.T) {
	c := NewCenter(nil)
	c.Append("a", Info, 1, "r1")
	c.Append("b", Info, 1, "r2")

	assert.Len(t, c.DrainAll(), 2)
	assert.Empty(t, c.DrainAll())
}
