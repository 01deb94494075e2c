package gmail

import (
	"encoding/base64"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	gm "google.golang.org/api/gmail/v1"
)

// extractBody pulls the text content out of a message payload.
// For multipart messages it prefers text/plain parts and walks nested
// multiparts depth-first. Returns "" when no text part is found.
func extractBody(payload *gm.MessagePart) string {
	if payload == nil {
		return ""
	}

	if strings.HasPrefix(payload.MimeType, "text/plain") {
		return decodePart(payload)
	}

	if strings.HasPrefix(payload.MimeType, "multipart/") {
		var b strings.Builder
		for _, part := range payload.Parts {
			if text := extractBody(part); text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}

	// Fall back to the top-level body for simple non-text messages
	if payload.Body != nil && payload.Body.Data != "" {
		return decodePart(payload)
	}
	return ""
}

// decodePart base64-decodes a part's body and converts any declared
// charset to UTF-8. Undecodable content is returned as-is rather than
// dropped.
func decodePart(part *gm.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}

	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		// Some senders pad non-canonically
		data, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}

	charset := partCharset(part)
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return string(data)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// partCharset reads the charset parameter off a part's Content-Type header
func partCharset(part *gm.MessagePart) string {
	for _, h := range part.Headers {
		if !strings.EqualFold(h.Name, "Content-Type") {
			continue
		}
		_, params, err := mime.ParseMediaType(h.Value)
		if err != nil {
			return ""
		}
		return params["charset"]
	}
	return ""
}
