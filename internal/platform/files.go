package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
)

// DownloadSubdir is the dedicated folder created under the platform's
// public downloads location
const DownloadSubdir = "ZenLoad"

// File permissions
const DefaultDirPermissions = 0755

// FallbackTitle is used when a download has no usable title at all
const FallbackTitle = "ZenLoad_Media"

// illegalFilenameChars matches every character replaced when turning a
// title into a filename
var illegalFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DownloadsDir returns the ZenLoad subdirectory of the user's public
// downloads location, creating it if needed.
func DownloadsDir() (string, error) {
	base, err := publicDownloadsDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(base, DownloadSubdir)
	if err := CreateDirectoryIfNotExists(dir); err != nil {
		return "", fmt.Errorf("creating downloads dir: %w", err)
	}
	return dir, nil
}

// publicDownloadsDir returns the standard Downloads directory for the user
func publicDownloadsDir() (string, error) {
	// On Android the external storage Downloads directory is used so files
	// are visible to the gallery and file managers
	if isAndroid() {
		return "/sdcard/Download", nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// SanitizeTitle turns a media title into a legal filename stem: every
// character outside [a-zA-Z0-9] becomes "_". An empty or fully illegal
// title falls back to FallbackTitle.
func SanitizeTitle(title string) string {
	clean := illegalFilenameChars.ReplaceAllString(title, "_")
	if clean == "" {
		return FallbackTitle
	}
	return clean
}

// OutputTemplate builds the engine output path template for a title: the
// sanitized title plus the engine-chosen extension, under dir.
func OutputTemplate(dir, title string) string {
	return filepath.Join(dir, SanitizeTitle(title)+".%(ext)s")
}

// NotifyMediaIndexer asks the system media indexer to pick up a produced
// file. Best-effort and fire-and-forget: only Android has an indexer to
// notify, and a failed broadcast never fails the download.
func NotifyMediaIndexer(filePath string) {
	if filePath == "" || !isAndroid() {
		return
	}

	cmd := exec.Command("am", "broadcast",
		"-a", "android.intent.action.MEDIA_SCANNER_SCAN_FILE",
		"-d", "file://"+filePath)

	go func() {
		if err := cmd.Run(); err != nil {
			fmt.Printf("failed to notify media indexer about %s: %v\n", filePath, err)
		}
	}()
}

// isAndroid detects an Android environment even when GOOS reports linux
func isAndroid() bool {
	return runtime.GOOS == "android" ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != ""
}
