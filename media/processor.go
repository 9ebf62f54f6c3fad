package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	GridThumbMaxSize  = 600
	LargeThumbMaxSize = 1200

	gridThumbJpegQuality  = 82
	largeThumbJpegQuality = 85
	thumbSharpenSigma     = 0.5

	blurPlaceholderSize = 16
	blurSigma           = 4.0
	blurJpegQuality     = 20

	hueSampleSize = 64
	// channel spread (0-255) below which an image is treated as
	// achromatic and no hue is reported
	grayscaleChannelDelta = 10
)

// ProcessedImage holds everything the processor derives from one source
// image.
type ProcessedImage struct {
	Width                  int
	Height                 int
	ThumbnailFilename      string
	ThumbnailLargeFilename string
	BlurDataURL            string
	DominantHue            *int
}

// Processor derives thumbnails, blur placeholders and the dominant hue
// from raw image bytes, saving generated files under ThumbnailsDir.
type Processor struct {
	ThumbnailsDir string
}

func NewProcessor(thumbnailsDir string) *Processor {
	return &Processor{ThumbnailsDir: thumbnailsDir}
}

// Process decodes the source image and produces the grid thumbnail, the
// large thumbnail, the inline blur placeholder and the dominant hue.
// Any failure makes the whole source unprocessable; callers treat it as
// a skipped file, never as a batch abort.
func (p *Processor) Process(data []byte, filename string) (*ProcessedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	if err := os.MkdirAll(p.ThumbnailsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory %s: %w", p.ThumbnailsDir, err)
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	thumbName := "thumb_" + base + ".jpg"
	largeName := "thumb_lg_" + base + ".jpg"

	if err := p.saveThumbnail(img, thumbName, GridThumbMaxSize, gridThumbJpegQuality); err != nil {
		return nil, err
	}
	if err := p.saveThumbnail(img, largeName, LargeThumbMaxSize, largeThumbJpegQuality); err != nil {
		return nil, err
	}

	blurDataURL, err := BlurDataURL(img)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &ProcessedImage{
		Width:                  bounds.Dx(),
		Height:                 bounds.Dy(),
		ThumbnailFilename:      thumbName,
		ThumbnailLargeFilename: largeName,
		BlurDataURL:            blurDataURL,
		DominantHue:            DominantHue(img),
	}, nil
}

// saveThumbnail writes a resized rendition whose longest edge is capped
// at maxSize. Fit never upscales, so small originals pass through at
// their native size.
func (p *Processor) saveThumbnail(img image.Image, filename string, maxSize, quality int) error {
	thumb := imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	thumb = imaging.Sharpen(thumb, thumbSharpenSigma)

	savePath := filepath.Join(p.ThumbnailsDir, filename)
	if err := imaging.Save(thumb, savePath, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save thumbnail %s: %w", savePath, err)
	}
	return nil
}

// BlurDataURL downscales the image to a tiny inside-fit rendition,
// blurs it and returns it as an inline base64 data URI suitable for a
// progressive-loading placeholder.
func BlurDataURL(img image.Image) (string, error) {
	tiny := imaging.Fit(img, blurPlaceholderSize, blurPlaceholderSize, imaging.Lanczos)
	tiny = imaging.Blur(tiny, blurSigma)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, tiny, imaging.JPEG, imaging.JPEGQuality(blurJpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode blur placeholder: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DominantHue estimates the statistically dominant color of the image
// and converts it to an HSL hue in [0, 359]. Near-grayscale images
// yield nil rather than a misleading hue.
func DominantHue(img image.Image) *int {
	small := imaging.Fit(img, hueSampleSize, hueSampleSize, imaging.NearestNeighbor)
	bounds := small.Bounds()

	type bucket struct {
		count   int
		r, g, b uint64
	}
	buckets := make(map[uint32]*bucket)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r16, g16, b16, _ := small.At(x, y).RGBA()
			r, g, b := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8)

			key := uint32(r>>4)<<8 | uint32(g>>4)<<4 | uint32(b>>4)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(r)
			bk.g += uint64(g)
			bk.b += uint64(b)
		}
	}

	var dominant *bucket
	for _, bk := range buckets {
		if dominant == nil || bk.count > dominant.count {
			dominant = bk
		}
	}
	if dominant == nil {
		return nil
	}

	n := uint64(dominant.count)
	return hueFromRGB(uint8(dominant.r/n), uint8(dominant.g/n), uint8(dominant.b/n))
}

// hueFromRGB converts an RGB triple to an HSL hue via the standard
// six-piecewise formula, normalizing negative results by adding 360.
func hueFromRGB(r, g, b uint8) *int {
	maxC := math.Max(float64(r), math.Max(float64(g), float64(b)))
	minC := math.Min(float64(r), math.Min(float64(g), float64(b)))
	delta := maxC - minC

	if delta < grayscaleChannelDelta {
		return nil
	}

	var h float64
	switch maxC {
	case float64(r):
		h = 60 * (float64(g) - float64(b)) / delta
	case float64(g):
		h = 60 * ((float64(b)-float64(r))/delta + 2)
	default:
		h = 60 * ((float64(r)-float64(g))/delta + 4)
	}
	if h < 0 {
		h += 360
	}

	hue := int(math.Round(h)) % 360
	result := hue
	return &result
}
