package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDerivesStoragePaths(t *testing.T) {
	storage := t.TempDir()
	t.Setenv("STORAGE_PATH", storage)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// storage layout must line up with the fixed public path prefixes
	if want := filepath.Join(storage, PhotosSubDir); cfg.PhotosPath != want {
		t.Errorf("PhotosPath = %q, want %q", cfg.PhotosPath, want)
	}
	if want := filepath.Join(storage, ThumbnailsSubDir); cfg.ThumbnailsPath != want {
		t.Errorf("ThumbnailsPath = %q, want %q", cfg.ThumbnailsPath, want)
	}
	if cfg.StoragePath != storage {
		t.Errorf("StoragePath = %q, want %q", cfg.StoragePath, storage)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.GeoTimeout.Milliseconds() != 2000 {
		t.Errorf("GeoTimeout = %v, want 2s", cfg.GeoTimeout)
	}
	if cfg.SessionTTL.Hours() != 24*7 {
		t.Errorf("SessionTTL = %v, want 168h", cfg.SessionTTL)
	}
}
