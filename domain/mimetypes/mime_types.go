// Package mimetypes classifies the avatar images published by contacts.
package mimetypes

import (
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown MIME = "unknown"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWebP MIME = "image/webp"
	ImageBMP  MIME = "image/bmp"
)

var avatarTypes = []MIME{ImagePNG, ImageJPEG, ImageGIF, ImageWebP, ImageBMP}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// DetectAvatar sniffs data and reports whether it is an image type usable as
// an avatar.
func DetectAvatar(data []byte) (MIME, bool) {
	if len(data) == 0 {
		return Unknown, false
	}
	detected := mimetype.Detect(data).String()
	for _, expected := range avatarTypes {
		if m, ok := Matches(detected, expected); ok {
			return m, true
		}
	}
	return Unknown, false
}
