package utils

import (
	"unicode/utf8"

	"go.uber.org/zap"
)

// TextSanitizer provides utilities for cleaning up extracted email text
type TextSanitizer struct {
	logger *zap.Logger
}

// NewTextSanitizer creates a new TextSanitizer
func NewTextSanitizer(logger *zap.Logger) *TextSanitizer {
	return &TextSanitizer{
		logger: logger,
	}
}

// SanitizeUTF8 drops invalid UTF-8 sequences so downstream rule checks and
// JSON encoding see clean text
func (s *TextSanitizer) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				// Skip invalid UTF-8 sequences
				continue
			}
		}
		result = append(result, r)
	}

	s.logger.Debug("Sanitized invalid UTF-8 from text",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// Truncate safely truncates text to the specified maximum byte size,
// keeping the result valid UTF-8
func (s *TextSanitizer) Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}
