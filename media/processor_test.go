package media

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func hueNear(hue, want int) bool {
	diff := hue - want
	if diff < 0 {
		diff = -diff
	}
	if diff > 180 {
		diff = 360 - diff
	}
	return diff <= 8
}

func TestDominantHuePrimaries(t *testing.T) {
	cases := []struct {
		name string
		c    color.Color
		want int
	}{
		{"red", color.RGBA{R: 220, A: 255}, 0},
		{"green", color.RGBA{G: 220, A: 255}, 120},
		{"blue", color.RGBA{B: 220, A: 255}, 240},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hue := DominantHue(solidImage(100, 100, tc.c))
			if hue == nil {
				t.Fatal("DominantHue = nil, want a hue")
			}
			if !hueNear(*hue, tc.want) {
				t.Errorf("DominantHue = %d, want near %d", *hue, tc.want)
			}
		})
	}
}

func TestDominantHueGrayscaleIsNil(t *testing.T) {
	if hue := DominantHue(solidImage(100, 100, color.Gray{Y: 128})); hue != nil {
		t.Errorf("DominantHue on gray = %d, want nil", *hue)
	}
}

func TestProcessGeneratesRenditions(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, solidImage(2000, 1000, color.RGBA{R: 200, G: 40, B: 40, A: 255}))
	result, err := p.Process(data, "sunset.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Width != 2000 || result.Height != 1000 {
		t.Errorf("dimensions = %dx%d, want 2000x1000", result.Width, result.Height)
	}
	if result.ThumbnailFilename != "thumb_sunset.jpg" {
		t.Errorf("thumbnail name = %q", result.ThumbnailFilename)
	}
	if result.ThumbnailLargeFilename != "thumb_lg_sunset.jpg" {
		t.Errorf("large thumbnail name = %q", result.ThumbnailLargeFilename)
	}
	if !strings.HasPrefix(result.BlurDataURL, "data:image/jpeg;base64,") {
		t.Errorf("blur data URL has wrong prefix: %.40s", result.BlurDataURL)
	}
	if result.DominantHue == nil {
		t.Error("expected a dominant hue for a red image")
	}

	thumb, err := imaging.Open(filepath.Join(dir, result.ThumbnailFilename))
	if err != nil {
		t.Fatalf("failed to open grid thumbnail: %v", err)
	}
	if w := thumb.Bounds().Dx(); w != GridThumbMaxSize {
		t.Errorf("grid thumbnail width = %d, want %d", w, GridThumbMaxSize)
	}

	large, err := imaging.Open(filepath.Join(dir, result.ThumbnailLargeFilename))
	if err != nil {
		t.Fatalf("failed to open large thumbnail: %v", err)
	}
	if w := large.Bounds().Dx(); w != LargeThumbMaxSize {
		t.Errorf("large thumbnail width = %d, want %d", w, LargeThumbMaxSize)
	}
}

func TestProcessNeverUpscales(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, solidImage(300, 200, color.RGBA{B: 200, A: 255}))
	result, err := p.Process(data, "tiny.png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	thumb, err := imaging.Open(filepath.Join(dir, result.ThumbnailFilename))
	if err != nil {
		t.Fatalf("failed to open thumbnail: %v", err)
	}
	if w, h := thumb.Bounds().Dx(), thumb.Bounds().Dy(); w != 300 || h != 200 {
		t.Errorf("small original was resized to %dx%d", w, h)
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	p := NewProcessor(t.TempDir())
	if _, err := p.Process([]byte("not an image at all"), "bad.jpg"); err == nil {
		t.Error("expected decode error")
	}
}
