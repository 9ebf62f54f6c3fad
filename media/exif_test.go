package media

import (
	"bytes"
	"testing"
)

func TestFormatExposure(t *testing.T) {
	cases := []struct {
		num, den int64
		want     string
	}{
		{1, 250, "1/250s"},
		{1, 8000, "1/8000s"},
		{4, 1000, "1/250s"},
		{2, 1, "2s"},
		{1, 1, "1s"},
		{5, 2, "2.5s"},
		{0, 250, ""},
		{1, 0, ""},
	}
	for _, tc := range cases {
		if got := formatExposure(tc.num, tc.den); got != tc.want {
			t.Errorf("formatExposure(%d, %d) = %q, want %q", tc.num, tc.den, got, tc.want)
		}
	}
}

func TestCameraName(t *testing.T) {
	cases := []struct {
		make, model, want string
	}{
		{"FUJIFILM", "FUJIFILM X-T4", "FUJIFILM X-T4"},
		{"Canon", "EOS R5", "Canon EOS R5"},
		{"", "X100V", "X100V"},
		{"Sony", "", "Sony"},
		{"", "", ""},
		{" NIKON ", " NIKON Z6 ", "NIKON Z6"},
	}
	for _, tc := range cases {
		if got := cameraName(tc.make, tc.model); got != tc.want {
			t.Errorf("cameraName(%q, %q) = %q, want %q", tc.make, tc.model, got, tc.want)
		}
	}
}

func TestExtractExifToleratesMissingData(t *testing.T) {
	data := ExtractExif(bytes.NewReader([]byte("no exif here")))
	if !data.IsEmpty() {
		t.Errorf("expected empty exif, got %+v", data)
	}
}

func TestIsEmpty(t *testing.T) {
	if (ExifData{Camera: "Canon EOS R5"}).IsEmpty() {
		t.Error("ExifData with a camera should not be empty")
	}
	if !(ExifData{}).IsEmpty() {
		t.Error("zero ExifData should be empty")
	}
}
