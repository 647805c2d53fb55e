package color

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse("#3366cc")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 0x33, G: 0x66, B: 0xcc}, c)

	c, err = Parse("3366CC")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 0x33, G: 0x66, B: 0xcc}, c)

	c, err = Parse("#000000")
	require.NoError(t, err)
	assert.Equal(t, Black, c)

	c, err = Parse("#ffffff")
	require.NoError(t, err)
	assert.Equal(t, White, c)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "#", "#fff", "fff", "#12345", "#1234567", "xyzxyz", "#gg0000", "##336699"} {
		_, err := Parse(in)
		require.Error(t, err, "input %q", in)

		var fe *FormatError
		require.True(t, errors.As(err, &fe), "input %q", in)
		assert.Equal(t, in, fe.Value)
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, in := range []string{"#000000", "#ffffff", "#3366cc", "#0a0b0c"} {
		c, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, in, c.Hex())
	}
}

func TestContrast(t *testing.T) {
	assert.Equal(t, Black, Contrast(White))
	assert.Equal(t, White, Contrast(Black))

	// Saturated blue is dark despite a high channel value.
	assert.Equal(t, White, Contrast(RGB{R: 0, G: 0, B: 255}))
	// Pure green reads as bright.
	assert.Equal(t, Black, Contrast(RGB{R: 0, G: 255, B: 0}))

	// Mid gray lands exactly on the threshold and takes the white branch.
	assert.Equal(t, White, Contrast(RGB{R: 128, G: 128, B: 128}))
	assert.Equal(t, Black, Contrast(RGB{R: 129, G: 129, B: 129}))
}
