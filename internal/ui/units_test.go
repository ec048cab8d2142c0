package ui

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		v        uint64
		decimals uint8
		want     string
	}{
		{0, 18, "0"},
		{1500000, 6, "1.5"},
		{1, 6, "0.000001"},
		{1000, 0, "1000"},
		{123456789, 3, "123456.789"},
		{1000000000000000000, 18, "1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatUnits(uint256.NewInt(tc.v), tc.decimals), "%d with %d decimals", tc.v, tc.decimals)
	}
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestFormatUnitsMaxValue(t *testing.T) {
	maxV := new(uint256.Int).SetAllOne()
	assert.Equal(t, maxV.Dec(), FormatUnits(maxV, 0))
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457.584007913129639935", FormatUnits(maxV, 18))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "2.5 TST", FormatAmount(uint256.NewInt(25), 1, "TST"))
	assert.Equal(t, "2.5", FormatAmount(uint256.NewInt(25), 1, ""))
}

func TestParseUnits(t *testing.T) {
	v, err := ParseUnits("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, "1500000", v.Dec())

	v, err = ParseUnits(" 42 ", 0)
	require.NoError(t, err)
	assert.Equal(t, "42", v.Dec())

	v, err = ParseUnits("0.000001", 6)
	require.NoError(t, err)
	assert.Equal(t, "1", v.Dec())

	v, err = ParseUnits("0", 18)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestParseUnitsRoundTrip(t *testing.T) {
	for _, s := range []string{"0.1", "12.345", "1000000", "0.000000000000000001"} {
		v, err := ParseUnits(s, 18)
		require.NoError(t, err)
		assert.Equal(t, s, FormatUnits(v, 18))
	}
}

func TestParseUnitsRejects(t *testing.T) {
	for _, bad := range []string{"", "abc", "-1", "0.0000001"} {
		_, err := ParseUnits(bad, 6)
		assert.ErrorIs(t, err, ErrBadUnits, "input %q", bad)
	}

	_, err := ParseUnits("115792089237316195423570985008687907853269984665640564039457584007913129639936", 0)
	assert.ErrorIs(t, err, ErrBadUnits)
}
