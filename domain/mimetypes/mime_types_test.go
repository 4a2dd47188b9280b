package mimetypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"PNG", "image/png", ImagePNG, true},
		{"JPEG", "image/jpeg", ImageJPEG, true},
		{"GIF with parameter", "image/gif; charset=binary", ImageGIF, true},
		{"Mismatch", "image/png", ImageJPEG, false},
		{"Not an image", "text/plain; charset=utf-8", ImagePNG, false},
		{"Invalid MIME", "not a mime", ImagePNG, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Matches(tt.detected, tt.expected)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestDetectAvatar(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		want   MIME
		wantOk bool
	}{
		{"PNG", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01"), ImagePNG, true},
		{"GIF", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"), ImageGIF, true},
		{"JPEG", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), ImageJPEG, true},
		{"Plain text", []byte("hello, not a picture"), Unknown, false},
		{"Empty", nil, Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectAvatar(tt.data)
			require.Equal(t, tt.wantOk, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
