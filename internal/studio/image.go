package studio

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"masterpiece/internal/domain"
)

// ImageInfo describes the picture currently on the canvas. Width and Height
// are zero when the format cannot be decoded locally.
type ImageInfo struct {
	MIMEType string `json:"mime_type"`
	Bytes    int    `json:"bytes"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format,omitempty"`
}

func inspectImage(img domain.Image) ImageInfo {
	info := ImageInfo{MIMEType: img.MIMEType, Bytes: len(img.Data)}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return info
	}
	info.Width, info.Height, info.Format = cfg.Width, cfg.Height, format
	return info
}
