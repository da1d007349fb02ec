package extract

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// extractBodyParts walks a message and collects its text/plain and text/html
// content. Multipart containers are descended one level at a time; anything
// that is not text (attachments, images) is skipped.
func extractBodyParts(msg *mail.Message) (text, html string, err error) {
	return walkPart(msg.Body, msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), 0)
}

const maxPartDepth = 4

func walkPart(body io.Reader, contentType, transferEncoding string, depth int) (text, html string, err error) {
	if depth > maxPartDepth {
		return "", "", nil
	}

	mediaType, params, parseErr := mime.ParseMediaType(contentType)
	if parseErr != nil || contentType == "" {
		// No usable Content-Type; treat the body as plain text.
		content, readErr := readPart(body, transferEncoding, "")
		return content, "", readErr
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary, ok := params["boundary"]
		if !ok {
			content, readErr := readPart(body, transferEncoding, params["charset"])
			return content, "", readErr
		}
		mr := multipart.NewReader(body, boundary)
		var textParts, htmlParts strings.Builder
		for {
			part, nextErr := mr.NextPart()
			if nextErr == io.EOF {
				break
			}
			if nextErr != nil {
				return textParts.String(), htmlParts.String(), nextErr
			}
			t, h, walkErr := walkPart(part, part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), depth+1)
			if walkErr != nil {
				continue
			}
			if t != "" {
				textParts.WriteString(t)
				textParts.WriteString("\n")
			}
			if h != "" {
				htmlParts.WriteString(h)
			}
		}
		return textParts.String(), htmlParts.String(), nil

	case mediaType == "text/html":
		content, readErr := readPart(body, transferEncoding, params["charset"])
		return "", content, readErr

	case strings.HasPrefix(mediaType, "text/"):
		content, readErr := readPart(body, transferEncoding, params["charset"])
		return content, "", readErr

	default:
		return "", "", nil
	}
}

// readPart decodes the transfer encoding and charset of one body part
func readPart(r io.Reader, transferEncoding, charset string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = newBase64Reader(r)
	}

	if decoded, err := charsetReader(charset, r); err == nil {
		r = decoded
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return string(content), err
	}
	return string(content), nil
}

// newBase64Reader decodes a base64 body, tolerating the line wrapping mail
// clients insert. A body that fails to decode is passed through as-is.
func newBase64Reader(r io.Reader) io.Reader {
	data, err := io.ReadAll(r)
	if err != nil {
		return bytes.NewReader(nil)
	}
	clean := strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) {
			return -1
		}
		return c
	}, string(data))
	decoded, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return bytes.NewReader(data)
	}
	return bytes.NewReader(decoded)
}

// charsetReader converts legacy charsets to UTF-8. Unknown or empty charsets
// pass through untouched.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return input, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return input, nil
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
