package media

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// GPSCoordinates is an extracted capture location.
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ExifData is the display-ready capture metadata stored in a photo's
// exif_json column. All fields are pre-formatted strings so the UI can
// render them verbatim.
type ExifData struct {
	Camera       string          `json:"camera,omitempty"`
	Lens         string          `json:"lens,omitempty"`
	Aperture     string          `json:"aperture,omitempty"`
	ShutterSpeed string          `json:"shutterSpeed,omitempty"`
	ISO          string          `json:"iso,omitempty"`
	FocalLength  string          `json:"focalLength,omitempty"`
	DateTaken    string          `json:"dateTaken,omitempty"`
	GPS          *GPSCoordinates `json:"gps,omitempty"`
}

// IsEmpty reports whether no metadata at all was extracted.
func (d ExifData) IsEmpty() bool {
	return d == ExifData{}
}

// ExtractExif reads EXIF metadata from r. Any decode failure yields an
// empty ExifData, never an error: missing or corrupt EXIF must not
// abort ingestion.
func ExtractExif(r io.Reader) ExifData {
	x, err := exif.Decode(r)
	if err != nil {
		return ExifData{}
	}

	data := ExifData{
		Camera:       cameraName(getString(x, exif.Make), getString(x, exif.Model)),
		Lens:         getString(x, exif.LensModel),
		ShutterSpeed: shutterSpeed(x),
	}

	if fNumber := getRational(x, exif.FNumber); fNumber != nil {
		data.Aperture = "f/" + formatFloat(*fNumber)
	}
	if iso := getInt(x, exif.ISOSpeedRatings); iso != nil {
		data.ISO = fmt.Sprintf("ISO %d", *iso)
	}
	if focal := getRational(x, exif.FocalLength); focal != nil {
		data.FocalLength = formatFloat(*focal) + "mm"
	}
	if dt, err := x.DateTime(); err == nil {
		data.DateTaken = dt.Format(time.RFC3339)
	}
	if lat, long, err := x.LatLong(); err == nil && (lat != 0 || long != 0) {
		data.GPS = &GPSCoordinates{Latitude: lat, Longitude: long}
	}

	return data
}

// ExtractExifFile is ExtractExif for an on-disk file.
func ExtractExifFile(path string) ExifData {
	f, err := os.Open(path)
	if err != nil {
		return ExifData{}
	}
	defer f.Close()
	return ExtractExif(f)
}

// cameraName joins make and model, deduplicating the make prefix that
// many vendors repeat in the model field.
func cameraName(make, model string) string {
	make = strings.TrimSpace(make)
	model = strings.TrimSpace(model)
	if model == "" {
		return make
	}
	if make == "" || strings.HasPrefix(model, make) {
		return model
	}
	return make + " " + model
}

// shutterSpeed formats exposure time as a photographer would read it:
// fractional form below one second, plain seconds otherwise.
func shutterSpeed(x *exif.Exif) string {
	tag, err := x.Get(exif.ExposureTime)
	if err != nil || tag == nil {
		return ""
	}
	num, den, err := tag.Rat2(0)
	if err != nil {
		return ""
	}
	return formatExposure(num, den)
}

// formatExposure renders a num/den exposure time: "1/250s" for times
// under one second, "2s" style otherwise.
func formatExposure(num, den int64) string {
	if num == 0 || den == 0 {
		return ""
	}
	val := float64(num) / float64(den)
	if val < 1 {
		return fmt.Sprintf("1/%ds", int(math.Round(float64(den)/float64(num))))
	}
	return formatFloat(val) + "s"
}

// helper to safely get and convert a rational tag (like FNumber, FocalLength)
func getRational(x *exif.Exif, tagName exif.FieldName) *float64 {
	tag, err := x.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		// sometimes stored as Int instead
		valInt, errInt := tag.Int(0)
		if errInt == nil {
			fVal := float64(valInt)
			return &fVal
		}
		return nil
	}
	val := float64(num) / float64(den)
	return &val
}

// helper to safely get and convert an integer tag (like ISO)
func getInt(x *exif.Exif, tagName exif.FieldName) *int {
	tag, err := x.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &val
}

// helper to safely get a string tag, trimming quotes and null terminators
func getString(x *exif.Exif, tagName exif.FieldName) string {
	tag, err := x.Get(tagName)
	if err != nil || tag == nil {
		return ""
	}
	val := strings.Trim(tag.String(), "\"\x00")
	return strings.TrimSpace(val)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
