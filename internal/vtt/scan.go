package vtt

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsImagePath reports whether a file name carries one of the supported
// raster extensions.
func IsImagePath(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".bmp":
		return true
	}
	return false
}

// ScanImageDir lists the raster image files directly inside dir, sorted
// lexicographically. A missing or unreadable directory yields nil.
func ScanImageDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImagePath(e.Name()) {
			continue
		}
		paths = append(paths, filepath.ToSlash(filepath.Join(dir, e.Name())))
	}
	sort.Strings(paths)
	return paths
}
