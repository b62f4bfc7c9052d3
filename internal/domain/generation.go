package domain

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// AspectRatio enumerates the output framings supported by the video model.
type AspectRatio string

const (
	AspectPortrait  AspectRatio = "9:16"
	AspectLandscape AspectRatio = "16:9"
)

const (
	// DefaultPrompt seeds the prompt box in the front end.
	DefaultPrompt = "Cinematic video, the person in the painting slowly waking up, slight movement, stretching, opening eyes, breathing, painting style comes to life, high quality, detailed texture, emotional."

	// DownloadFilename is the suggested name for a user-initiated download.
	DownloadFilename = "masterpiece-awakened.mp4"

	// VideoMIMEType is implied by the remote service; asset responses do not declare it.
	VideoMIMEType = "video/mp4"
)

// ParseAspectRatio accepts either the ratio ("9:16") or its name ("portrait").
func ParseAspectRatio(v string) (AspectRatio, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "9:16", "portrait":
		return AspectPortrait, nil
	case "16:9", "landscape":
		return AspectLandscape, nil
	default:
		return "", fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidRequest, v)
	}
}

// AspectRatioForDimensions picks the framing closest to an image of w x h pixels.
// Square and unknown sizes fall back to portrait.
func AspectRatioForDimensions(w, h int) AspectRatio {
	if w > h && h > 0 {
		return AspectLandscape
	}
	return AspectPortrait
}

// Valid reports whether a is one of the supported ratios.
func (a AspectRatio) Valid() bool {
	return a == AspectPortrait || a == AspectLandscape
}

// Image is the still picture the video is generated from.
type Image struct {
	Data     []byte
	MIMEType string
}

var dataURLPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// ParseDataURL decodes a "data:<mime>;base64,<payload>" string as produced by
// browser file readers.
func ParseDataURL(raw string) (Image, error) {
	m := dataURLPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Image{}, fmt.Errorf("%w: malformed data url", ErrInvalidRequest)
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return Image{}, fmt.Errorf("%w: decode data url: %v", ErrInvalidRequest, err)
	}
	img := Image{Data: data, MIMEType: m[1]}
	if err := img.Validate(); err != nil {
		return Image{}, err
	}
	return img, nil
}

// Validate checks the payload is non-empty and declared as an image.
func (i Image) Validate() error {
	if len(i.Data) == 0 {
		return fmt.Errorf("%w: image is empty", ErrInvalidRequest)
	}
	if !strings.HasPrefix(strings.ToLower(i.MIMEType), "image/") {
		return fmt.Errorf("%w: %q is not an image type", ErrInvalidRequest, i.MIMEType)
	}
	return nil
}

// Base64 returns the payload in the encoding expected by the remote API.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// GenerationRequest is built once per user-initiated generation and never mutated.
type GenerationRequest struct {
	prompt string
	image  Image
	aspect AspectRatio
}

// NewGenerationRequest validates its inputs and copies the image bytes so later
// changes by the caller cannot leak into an in-flight request.
func NewGenerationRequest(prompt string, image Image, aspect AspectRatio) (GenerationRequest, error) {
	if err := image.Validate(); err != nil {
		return GenerationRequest{}, err
	}
	if !aspect.Valid() {
		return GenerationRequest{}, fmt.Errorf("%w: unsupported aspect ratio %q", ErrInvalidRequest, aspect)
	}
	data := append([]byte(nil), image.Data...)
	return GenerationRequest{
		prompt: prompt,
		image:  Image{Data: data, MIMEType: image.MIMEType},
		aspect: aspect,
	}, nil
}

func (r GenerationRequest) Prompt() string           { return r.prompt }
func (r GenerationRequest) AspectRatio() AspectRatio { return r.aspect }

// Image returns a copy of the request image.
func (r GenerationRequest) Image() Image {
	return Image{Data: append([]byte(nil), r.image.Data...), MIMEType: r.image.MIMEType}
}

// Job is the remote handle for one asynchronous generation. Name is opaque and
// only used as the continuation token for polling.
type Job struct {
	Name      string
	Done      bool
	ResultURI string
}
