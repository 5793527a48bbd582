package mimetypes

import (
	"homecloud/domain"
	"mime"
	"strings"
)

type MIME string

const (
	Unknown MIME = "unknown"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWebP MIME = "image/webp"
	ImageHEIC MIME = "image/heic"

	VideoMP4       MIME = "video/mp4"
	VideoQuickTime MIME = "video/quicktime"
	Video3GPP      MIME = "video/3gpp"
	VideoWebM      MIME = "video/webm"
)

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// CategoryOf maps a detected MIME type onto a media category.
// Anything that is neither image/* nor video/* is rejected.
func CategoryOf(detected string) (domain.Category, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return 0, false
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return domain.Images, true
	case strings.HasPrefix(mt, "video/"):
		return domain.Video, true
	default:
		return 0, false
	}
}
