package prepare

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"momentflow/internal/config"
)

const defaultQuality = 90

// Payload is a binary body together with its content type.
type Payload struct {
	Data        []byte
	ContentType string
}

// DetectContentType sniffs data; falls back to application/octet-stream.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// Image downsizes and re-encodes still images according to profile.
// Anything that is not a decodable still image is returned untouched.
func Image(p Payload, profile *config.Profile) (Payload, error) {
	source, ok := imageFormat(p.ContentType)
	if !ok || (profile.MaxWidth <= 0 && profile.ConvertTo == "") {
		return p, nil
	}

	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return Payload{}, fmt.Errorf("failed to decode image: %w", err)
	}

	target := source
	if profile.ConvertTo != "" {
		target = normalizeFormat(profile.ConvertTo)
	}

	resized := false
	if profile.MaxWidth > 0 && img.Bounds().Dx() > profile.MaxWidth {
		img = imaging.Resize(img, profile.MaxWidth, 0, imaging.Lanczos)
		resized = true
	}
	if !resized && target == source {
		return p, nil
	}

	quality := profile.Quality
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}
	data, err := encode(img, target, quality)
	if err != nil {
		return Payload{}, err
	}

	return Payload{Data: data, ContentType: "image/" + target}, nil
}

func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return buf.Bytes(), nil
}

func imageFormat(contentType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/jpeg", "image/jpg":
		return "jpeg", true
	case "image/png":
		return "png", true
	case "image/webp":
		return "webp", true
	}
	return "", false
}

func normalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "jpg", "jpeg":
		return "jpeg"
	case "png", "webp":
		return f
	default:
		return "jpeg"
	}
}
