package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePresence(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   PresenceStatus
		wantOk bool
	}{
		{name: "lower case", input: "online", want: Online, wantOk: true},
		{name: "mixed case with spaces", input: " Free For Chat ", want: FreeForChat, wantOk: true},
		{name: "unknown", input: "invisible", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePresence(tt.input)
			require.Equal(t, tt.wantOk, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPresenceStatus_IsOnline(t *testing.T) {
	req := require.New(t)
	req.False(Offline.IsOnline())
	req.True(DoNotDisturb.IsOnline())
	req.True(Away.IsOnline())
	req.True(Online.IsOnline())
}
