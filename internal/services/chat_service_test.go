package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelID(t *testing.T) {
	testCases := []struct {
		name      string
		a         string
		b         string
		contextID string
		expected  string
	}{
		{"orders participants", "u2", "u1", "p9", "u1_u2_p9"},
		{"already ordered", "u1", "u2", "p9", "u1_u2_p9"},
		{"defaults context to general", "u2", "u1", "", "u1_u2_general"},
		{"explicit general", "a", "b", "general", "a_b_general"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ChannelID(tc.a, tc.b, tc.contextID))
		})
	}
}

func TestChannelIDSymmetric(t *testing.T) {
	// Both sides must land on the same channel regardless of initiator.
	assert.Equal(t, ChannelID("agentX", "buyerY", "listing7"), ChannelID("buyerY", "agentX", "listing7"))
}
