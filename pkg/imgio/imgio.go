// Package imgio loads and saves images in the formats the pairgen tools
// accept: PNG, JPEG, BMP, TIFF and WebP on the way in, PNG, JPEG and
// WebP on the way out.
package imgio

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format identifies an output encoding.
type Format string

// Supported output formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// ParseFormat maps a user-facing format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// Ext returns the filename extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatWebP:
		return ".webp"
	default:
		return ".png"
	}
}

// Load reads and decodes the image at path. WebP files that the
// registered decoders reject are retried with the explicit decoder.
func Load(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img to path in the given format. The quality setting
// applies to lossy formats and is ignored for PNG. JPEG output is
// flattened first, since JPEG carries no alpha channel.
func Save(img image.Image, path string, format Format, quality int) error {
	switch format {
	case FormatWebP:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Quality: float32(quality)})
	case FormatJPEG:
		return imaging.Save(Flatten(img), path, imaging.JPEGQuality(quality))
	case FormatPNG:
		return imaging.Save(img, path)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Flatten returns a copy of img with every pixel forced opaque, the
// equivalent of converting to a three-channel mode before a JPEG
// encode.
func Flatten(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
