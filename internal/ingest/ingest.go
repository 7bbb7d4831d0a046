// Package ingest validates uploaded source files and prepares them for
// analysis: size and type checks, binary rejection, language detection, and
// UTF-8 normalization.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFileBytes caps uploads at 10MB.
const DefaultMaxFileBytes = 10 << 20

// languageByExt maps file extensions to analysis languages.
var languageByExt = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".go":   "go",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".c":    "c",
	".rb":   "ruby",
	".php":  "php",
}

// File is a validated source file ready for analysis.
type File struct {
	Name     string
	Language string
	Content  string
	Size     int
}

// ValidationError reports why a file was rejected.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError checks if an error is a file validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SupportedExtensions lists the file extensions accepted for analysis.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(languageByExt))
	for ext := range languageByExt {
		exts = append(exts, ext)
	}
	return exts
}

// DetectLanguage resolves the analysis language from the filename extension.
// Unknown extensions return "unknown".
func DetectLanguage(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "unknown"
}

// Validate checks raw file bytes against size, type, and content constraints.
func Validate(filename string, data []byte, maxBytes int) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if len(data) > maxBytes {
		return &ValidationError{
			Field:   "file_size",
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("file size (%.2fMB) exceeds maximum allowed size (%.2fMB)", float64(len(data))/1024/1024, float64(maxBytes)/1024/1024),
		}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := languageByExt[ext]; !ok {
		return &ValidationError{
			Field:   "file_type",
			Code:    "UNSUPPORTED_FORMAT",
			Message: fmt.Sprintf("file type %q is not supported", ext),
		}
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return &ValidationError{
			Field:   "content_type",
			Code:    "BINARY_CONTENT",
			Message: "binary files are not supported for code analysis",
		}
	}
	return nil
}

// Decode converts raw bytes to a UTF-8 string, replacing invalid sequences
// with the Unicode replacement character.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// New validates raw bytes and builds a File. maxBytes <= 0 applies the
// default cap.
func New(filename string, data []byte, maxBytes int) (File, error) {
	if err := Validate(filename, data, maxBytes); err != nil {
		return File{}, err
	}
	return File{
		Name:     filepath.Base(filename),
		Language: DetectLanguage(filename),
		Content:  Decode(data),
		Size:     len(data),
	}, nil
}

// Load reads and validates a file from disk.
func Load(path string, maxBytes int) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return New(path, data, maxBytes)
}
