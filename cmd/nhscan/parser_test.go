package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLines(t *testing.T) {
	lines, err := scanLines(strings.NewReader("vlan 10 10.0.1.1\r\n\nlast"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vlan 10 10.0.1.1", "", "last"}, lines)
}

func TestScanLinesLongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	lines, err := scanLines(strings.NewReader("a\n" + long + "\nb\n"))
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Len(t, lines[1], len(long))
}

func TestFirstInvalidUTF8(t *testing.T) {
	assert.Zero(t, firstInvalidUTF8([]string{"vlan 10", "ñ"}))
	assert.Equal(t, 2, firstInvalidUTF8([]string{"ok", "bad \xff byte"}))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "10.0.1.9", hostOf("10.0.1.9:1234"))
	assert.Equal(t, "10.0.1.9", hostOf("10.0.1.9"))
	assert.Equal(t, "fe80::1", hostOf("[fe80::1]:80"))
}
