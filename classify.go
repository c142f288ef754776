package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const outputSuffix = "-bin.png"

// extensionFormats maps lowercase extensions (with dot) to the format they identify.
var extensionFormats = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".jpe":  FormatJPEG,
	".heic": FormatHEIC,
}

// mimeFormats is used when a file has no extension and its content has to be sniffed.
var mimeFormats = map[string]Format{
	"image/png":  FormatPNG,
	"image/jpeg": FormatJPEG,
	"image/heic": FormatHEIC,
}

// Classify stats path and detects its format. Missing or unreadable paths
// come back as unsupported; classification never fails.
func Classify(path string) ImageFile {
	f := ImageFile{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return f
	}
	if info.IsDir() {
		f.IsDir = true
		return f
	}
	f.Format = detectFormat(path)
	return f
}

// detectFormat derives the type identifier from the extension. Only files
// without an extension are sniffed.
func detectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		return extensionFormats[ext]
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return FormatUnsupported
	}
	return formatForMIME(mtype)
}

// formatForMIME walks up the MIME hierarchy so aliases and children of the
// supported types still conform.
func formatForMIME(mtype *mimetype.MIME) Format {
	for m := mtype; m != nil; m = m.Parent() {
		for name, format := range mimeFormats {
			if m.Is(name) {
				return format
			}
		}
	}
	return FormatUnsupported
}

// OutputPath returns <outputDir>/<base name without extension>-bin.png.
// Nested inputs share one flat namespace, so equal base names overwrite each other.
func OutputPath(outputDir, inputPath string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, name+outputSuffix)
}
