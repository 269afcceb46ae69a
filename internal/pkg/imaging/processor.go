package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// ProcessedImage holds a resized original and a thumbnail in the same encoding
type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	MaxWidth    int
	MaxHeight   int
	ThumbWidth  int
	ThumbHeight int
	Quality     int // JPEG quality 1-100
}

// DefaultConfig is sized for room gallery photos
func DefaultConfig() Config {
	return Config{
		MaxWidth:    1600,
		MaxHeight:   1200,
		ThumbWidth:  400,
		ThumbHeight: 300,
		Quality:     85,
	}
}

// Processor resizes uploaded room photos
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process fits the image into the configured bounds and cuts a centered thumbnail.
// PNG stays PNG; everything else is re-encoded as JPEG.
func (p *Processor) Process(data []byte) (*ProcessedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := img
	b := img.Bounds()
	if b.Dx() > p.config.MaxWidth || b.Dy() > p.config.MaxHeight {
		resized = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}
	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)

	result := &ProcessedImage{
		ContentType: "image/jpeg",
		Extension:   ".jpg",
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
	}
	if format == "png" {
		result.ContentType = "image/png"
		result.Extension = ".png"
	}

	if result.Original, err = p.encode(resized, format); err != nil {
		return nil, fmt.Errorf("failed to encode original: %w", err)
	}
	if result.Thumbnail, err = p.encode(thumb, format); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return result, nil
}

func (p *Processor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
