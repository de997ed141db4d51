// Package attachment converts payment screenshots between the binary form the
// local store keeps and the self-contained data URLs the cloud store keeps.
package attachment

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxWidth bounds the width of normalised screenshots.
const MaxWidth = 1080

const maxSizeBytes = 5 << 20

var (
	ErrNotDataURL = errors.New("not a base64 data url")
	ErrTooLarge   = errors.New("attachment exceeds 5MB limit")
)

// DataURL encodes data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL reports whether s is an inline data URL rather than a link.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL splits a base64 data URL into its MIME type and payload.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data url payload: %w", err)
	}

	return mimeType, data, nil
}

// FromBinary decodes an image, scales it down to MaxWidth when wider and
// re-encodes it as a JPEG data URL.
func FromBinary(data []byte) (string, error) {
	if len(data) > maxSizeBytes {
		return "", ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}

	return DataURL("image/jpeg", buf.Bytes()), nil
}
