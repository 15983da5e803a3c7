package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Plain Title", "Plain_Title"},
		{"a/b\\c:d*e?f", "a_b_c_d_e_f"},
		{"already_ok123", "already_ok123"},
		{"Ümläut видео", "_ml_ut______"},
		{"", FallbackTitle},
	}

	for _, test := range tests {
		if result := SanitizeTitle(test.title); result != test.expected {
			t.Errorf("SanitizeTitle(%q) = %q, expected %q", test.title, result, test.expected)
		}
	}
}

func TestOutputTemplate(t *testing.T) {
	result := OutputTemplate("/downloads/ZenLoad", "My Clip!")
	expected := filepath.Join("/downloads/ZenLoad", "My_Clip_.%(ext)s")
	if result != expected {
		t.Errorf("OutputTemplate() = %q, expected %q", result, expected)
	}
}

func TestCreateDirectoryIfNotExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sub")

	if err := CreateDirectoryIfNotExists(dir); err != nil {
		t.Fatalf("CreateDirectoryIfNotExists() failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory was not created: %v", err)
	}

	// Second call on an existing directory is a no-op
	if err := CreateDirectoryIfNotExists(dir); err != nil {
		t.Errorf("second call failed: %v", err)
	}
}

func TestNotifyMediaIndexer_NoopOffAndroid(t *testing.T) {
	// Must not panic or block on platforms without a media indexer
	NotifyMediaIndexer("")
	NotifyMediaIndexer("/tmp/whatever.mp4")
}
