package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageHelpersPrefixAndText(t *testing.T) {
	cases := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Success", Success, "✓"},
		{"Warn", Warn, "⚠"},
		{"Err", Err, "✗"},
		{"Info", Info, "ℹ"},
		{"Hint", Hint, "💡"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.fn("message text")
			assert.Contains(t, result, tc.prefix)
			assert.Contains(t, result, "message text")
			assert.Contains(t, tc.fn(""), tc.prefix)
		})
	}
}

func TestValueHelpersKeepText(t *testing.T) {
	assert.Contains(t, Addr("0xABCDEF"), "0xABCDEF")
	assert.Contains(t, Val("1.5 TST"), "1.5 TST")
	assert.Contains(t, Meta("some metadata"), "some metadata")
	assert.Contains(t, Token("TST"), "TST")
}

func TestTruncateAddrShortAddress(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
}

func TestTruncateAddrExactBoundary(t *testing.T) {
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
}

func TestTruncateAddrLongAddress(t *testing.T) {
	addr := "0x1234567890abcdef1234567890abcdef12345678"
	assert.Equal(t, "0x1234…5678", TruncateAddr(addr))
}

func TestBannerMentionsStorage(t *testing.T) {
	b := Banner()
	assert.True(t, strings.Contains(b, "BoltDB"))
	assert.NotEmpty(t, strings.TrimSpace(b))
}
