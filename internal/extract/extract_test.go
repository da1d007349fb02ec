package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keyurpatil06/phishlens/internal/core"
)

func newTestExtractor() *Extractor {
	return NewExtractor(zap.NewNop())
}

func TestExtractURLs(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			"bare URL",
			"visit https://example.com/login now",
			[]string{"https://example.com/login"},
		},
		{
			"trailing punctuation trimmed",
			"see https://example.com/path.",
			[]string{"https://example.com/path"},
		},
		{
			"parenthesised",
			"(https://example.com/a), then https://example.org/b;",
			[]string{"https://example.com/a", "https://example.org/b"},
		},
		{
			"case insensitive scheme",
			"HTTP://EXAMPLE.COM/X",
			[]string{"HTTP://EXAMPLE.COM/X"},
		},
		{"no URLs", "nothing to see here", []string{}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExtractURLs(tt.text)
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestParsePlainText(t *testing.T) {
	e := newTestExtractor()

	raw := "From: PayPal Support <support@evil.example>\r\n" +
		"Subject: verify your account\r\n" +
		"\r\n" +
		"Click https://paypa1-secure.top/login immediately.\r\n"

	features, err := e.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "PayPal Support", features.FromName)
	assert.Equal(t, "support@evil.example", features.FromEmail)
	assert.Equal(t, "verify your account", features.Subject)
	assert.Contains(t, features.BodyText, "Click")

	require.Len(t, features.Links, 1)
	assert.Equal(t, "https://paypa1-secure.top/login", features.Links[0].Href)
}

func TestParseHTMLAnchors(t *testing.T) {
	e := newTestExtractor()

	raw := "From: a@example.com\r\n" +
		"Subject: hello\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		`<html><body><a href="http://evil.example/login">paypal.com</a>` +
		`<a href="data:text/html;base64,PGh0bWw+">open</a></body></html>` + "\r\n"

	features, err := e.Parse(raw)
	require.NoError(t, err)

	require.Len(t, features.Links, 2)
	assert.Equal(t, "http://evil.example/login", features.Links[0].Href)
	assert.Equal(t, "paypal.com", features.Links[0].Text)
	assert.False(t, features.Links[0].IsDataURI)
	assert.True(t, features.Links[1].IsDataURI)
}

func TestParseMultipart(t *testing.T) {
	e := newTestExtractor()

	raw := "From: a@example.com\r\n" +
		"Subject: multipart\r\n" +
		"Content-Type: multipart/alternative; boundary=\"B42\"\r\n" +
		"\r\n" +
		"--B42\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"plain part with https://example.com/plain\r\n" +
		"--B42\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		`<a href="https://example.com/html">link</a>` + "\r\n" +
		"--B42--\r\n"

	features, err := e.Parse(raw)
	require.NoError(t, err)

	assert.Contains(t, features.BodyText, "plain part")

	hrefs := make([]string, 0, len(features.Links))
	for _, link := range features.Links {
		hrefs = append(hrefs, link.Href)
	}
	assert.Contains(t, hrefs, "https://example.com/html")
	assert.Contains(t, hrefs, "https://example.com/plain")
}

func TestParseEncodedSubject(t *testing.T) {
	e := newTestExtractor()

	raw := "From: a@example.com\r\n" +
		"Subject: =?utf-8?B?dmVyaWZ5IHlvdXIgYWNjb3VudA==?=\r\n" +
		"\r\n" +
		"body\r\n"

	features, err := e.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "verify your account", features.Subject)
}

func TestParseMalformedSenderKept(t *testing.T) {
	e := newTestExtractor()

	raw := "From: not-an-address\r\n" +
		"Subject: x\r\n" +
		"\r\n" +
		"body\r\n"

	features, err := e.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "not-an-address", features.FromEmail)
	assert.Empty(t, features.FromName)
}

func TestParseRejectsNonMessage(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Parse("this is not an email at all")
	assert.Error(t, err)
}

func TestExtractHTMLLinks(t *testing.T) {
	links := ExtractHTMLLinks(`<p>intro</p><a href="https://example.com/a">first link</a><a>no href</a>`)
	require.Len(t, links, 1)
	assert.Equal(t, core.Link{Href: "https://example.com/a", Text: "first link"}, links[0])
}

func TestHTMLToText(t *testing.T) {
	text := htmlToText(`<html><body><h1>Title</h1><p>Paragraph text</p></body></html>`)
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Paragraph text")
	assert.NotContains(t, text, "<p>")
}
