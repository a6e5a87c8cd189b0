// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Supported upload MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// IsSupportedMimeType reports whether uploads of this type are accepted.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	}
	return false
}

// ImageVariantConfig describes one derived image size.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool
}

// ImageVariants are the derived sizes generated for every upload: thumb for
// admin listings and grids, card for product cards, hero for page headers.
var ImageVariants = map[string]ImageVariantConfig{
	"thumb": {Width: 320, Height: 240, Quality: 80, Crop: true},
	"card":  {Width: 640, Height: 480, Quality: 85, Crop: false},
	"hero":  {Width: 1280, Height: 720, Quality: 85, Crop: false},
}
