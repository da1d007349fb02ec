package extract

import (
	"fmt"
	"mime"
	"net/mail"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
	"github.com/keyurpatil06/phishlens/internal/utils"
)

// urlRegex captures http/https URLs in free-form text. Trailing punctuation
// is trimmed separately so "see https://example.com." extracts cleanly.
var (
	urlRegex            = regexp.MustCompile(`(?i)https?://[^\s'")<>]+`)
	trailingPunctuation = regexp.MustCompile(`[.,;:)\]>]+$`)
)

// maxBodyBytes bounds how much body text feeds the lexical checks
const maxBodyBytes = 256 * 1024

// Extractor turns raw email text into scoring features
type Extractor struct {
	logger    *zap.Logger
	sanitizer *utils.TextSanitizer
}

// NewExtractor creates a new email extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{
		logger:    logger,
		sanitizer: utils.NewTextSanitizer(logger),
	}
}

// ExtractURLs finds bare http(s) URLs in free-form text
func (e *Extractor) ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}
	matches := urlRegex.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, trailingPunctuation.ReplaceAllString(m, ""))
	}
	return urls
}

// Parse extracts scoring features from a raw RFC 5322 message. Both the
// plain-text and HTML parts contribute: text parts feed the lexical checks,
// HTML parts supply anchors with their visible text.
func (e *Extractor) Parse(raw string) (core.EmailFeatures, error) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return core.EmailFeatures{}, fmt.Errorf("failed to parse email: %w", err)
	}

	features := core.EmailFeatures{
		Subject: decodeHeader(msg.Header.Get("Subject")),
	}

	fromHeader := decodeHeader(msg.Header.Get("From"))
	if addr, err := mail.ParseAddress(fromHeader); err == nil {
		features.FromName = addr.Name
		features.FromEmail = addr.Address
	} else {
		// Keep whatever was there; the scorer treats a malformed sender
		// as its own signal.
		features.FromEmail = strings.TrimSpace(fromHeader)
	}

	text, html, err := extractBodyParts(msg)
	if err != nil {
		e.logger.Warn("Failed to walk message body", zap.Error(err))
	}

	features.BodyText = e.sanitizer.Truncate(e.sanitizer.SanitizeUTF8(text), maxBodyBytes)

	if html != "" {
		features.Links = append(features.Links, ExtractHTMLLinks(html)...)
		if features.BodyText == "" {
			features.BodyText = e.sanitizer.Truncate(e.sanitizer.SanitizeUTF8(htmlToText(html)), maxBodyBytes)
		}
	}

	// Bare URLs in the text body count as links too, so a plain-text
	// phish is scored the same way as an HTML one.
	for _, u := range e.ExtractURLs(features.BodyText) {
		features.Links = append(features.Links, core.Link{
			Href:      u,
			Text:      u,
			IsDataURI: false,
		})
	}

	return features, nil
}

// decodeHeader decodes RFC 2047 encoded-words, falling back to the raw value
func decodeHeader(value string) string {
	dec := &mime.WordDecoder{CharsetReader: charsetReader}
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
