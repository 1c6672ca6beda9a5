package bitblock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSetBit(t *testing.T) {
	b := New(72)
	require.True(t, b.IsZero())

	b.SetBit(0, true)
	b.SetBit(71, true)
	require.True(t, b.GetBit(0))
	require.True(t, b.GetBit(71))
	require.False(t, b.GetBit(1))
	require.False(t, b.IsZero())

	b.SetBit(0, false)
	require.False(t, b.GetBit(0))
}

func TestInvBit(t *testing.T) {
	b := New(8)
	require.True(t, b.InvBit(3))
	require.True(t, b.GetBit(3))
	require.False(t, b.InvBit(3))
	require.False(t, b.GetBit(3))
}

func TestXorAndClear(t *testing.T) {
	a := New(64)
	b := New(64)
	a.SetBit(5, true)
	b.SetBit(5, true)
	b.SetBit(10, true)
	a.Xor(b)
	require.False(t, a.GetBit(5))
	require.True(t, a.GetBit(10))

	a.Clear()
	require.True(t, a.IsZero())
}

func TestCloneIndependence(t *testing.T) {
	a := New(16)
	a.SetBit(1, true)
	c := a.Clone()
	c.SetBit(2, true)
	require.False(t, a.GetBit(2))
	require.True(t, c.GetBit(1))
}

func TestPopCount(t *testing.T) {
	b := New(128)
	for _, i := range []int{0, 10, 63, 64, 127} {
		b.SetBit(i, true)
	}
	require.Equal(t, 5, b.PopCount())
}

// Extract followed by re-embedding through the same layout must recover the
// original bits: this is the round-trip invariant spec.md requires of the
// cacheline/codec-word relationship.
func TestExtractEmbedRoundTrip(t *testing.T) {
	for _, layout := range []Layout{LayoutLinear, LayoutAMD, LayoutPin, LayoutOnChipX4, LayoutOnChipX8} {
		channelWidth := 8
		chipWidth := 9
		line := New(channelWidth * chipWidth)
		for i := 0; i < line.Width(); i++ {
			if i%3 == 0 {
				line.SetBit(i, true)
			}
		}
		rebuilt := New(line.Width())
		for chip := 0; chip < channelWidth; chip++ {
			word := Extract(line, layout, chip, chipWidth, channelWidth)
			EmbedXor(rebuilt, word, layout, chip, chipWidth, channelWidth)
		}
		require.True(t, line.Equal(rebuilt), "layout %v failed round trip", layout)
	}
}

func TestDiffPositions(t *testing.T) {
	a := New(8)
	b := New(8)
	b.SetBit(2, true)
	b.SetBit(5, true)
	require.Equal(t, []int{2, 5}, a.DiffPositions(b))
}
