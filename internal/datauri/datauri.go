// Package datauri encodes and decodes RFC 2397 data URIs and prepares photos
// for the vision API.
package datauri

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalid is returned for strings that are not data URIs.
var ErrInvalid = errors.New("invalid data uri")

const (
	// MaxVisionSide bounds both dimensions of an image sent to the vision API.
	MaxVisionSide = 800
	// VisionQuality is the JPEG quality used for vision uploads.
	VisionQuality = 70
)

// Encode wraps data in a base64 data URI with its sniffed MIME type.
func Encode(data []byte) string {
	return EncodeAs(data, mediaType(mimetype.Detect(data).String()))
}

// EncodeAs wraps data in a base64 data URI with an explicit MIME type.
func EncodeAs(data []byte, mime string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode returns the payload and MIME type of a data URI. A missing MIME type
// defaults to text/plain.
func Decode(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", ErrInvalid
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: no payload", ErrInvalid)
	}

	isBase64 := false
	if h, found := strings.CutSuffix(header, ";base64"); found {
		header, isBase64 = h, true
	}
	mime := mediaType(header)
	if mime == "" {
		mime = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return data, mime, nil
	}

	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return []byte(s), mime, nil
}

// IsImage reports whether s is an inline image data URI.
func IsImage(s string) bool {
	return strings.HasPrefix(s, "data:image")
}

// Extension returns the file extension used for a MIME type: its subtype,
// e.g. "png" for image/png and "svg+xml" for image/svg+xml.
func Extension(mime string) string {
	_, sub, ok := strings.Cut(mediaType(mime), "/")
	if !ok || sub == "" {
		return "bin"
	}
	return sub
}

// PrepareForVision decodes an image (honouring EXIF orientation), shrinks it to fit MaxVisionSide×MaxVisionSide
// keeping its aspect ratio, and re-encodes it as JPEG. It returns the base64
// payload without the data URI prefix.
func PrepareForVision(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	img = Fit(img, MaxVisionSide)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(VisionQuality)); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Fit scales img down so neither side exceeds side. Smaller images are
// returned unchanged.
func Fit(img image.Image, side int) image.Image {
	b := img.Bounds()
	if b.Dx() <= side && b.Dy() <= side {
		return img
	}
	if b.Dx() >= b.Dy() {
		return imaging.Resize(img, side, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, side, imaging.Lanczos)
}

func mediaType(s string) string {
	mt, _, _ := strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
