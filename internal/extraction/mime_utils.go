package extraction

import (
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// extractTextFromMessage returns the body of a message. For multipart
// messages it returns the first text/plain part, searching nested multiparts
// depth-first, and the empty string if there is none.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	text, _, err := extractText(
		msg.Header.Get("Content-Type"),
		msg.Header.Get("Content-Transfer-Encoding"),
		msg.Body,
		true,
	)
	return text, err
}

// extractText reads a single-part body as is when top is set; nested parts
// only count when they are text/plain
func extractText(contentType, transferEncoding string, body io.Reader, top bool) (string, bool, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		// A missing or unparsable Content-Type is treated as text/plain
		if !top && err == nil && mediaType != "text/plain" {
			return "", false, nil
		}
		b, err := io.ReadAll(decodeTransfer(transferEncoding, body))
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		b, err := io.ReadAll(body)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}

	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}

		partType := part.Header.Get("Content-Type")
		if partType == "" {
			partType = "text/plain"
		}
		// NextPart has already undone quoted-printable
		text, found, err := extractText(partType, part.Header.Get("Content-Transfer-Encoding"), part, false)
		if err != nil {
			// Skip parts we can't read
			continue
		}
		if found {
			return text, true, nil
		}
	}
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// decodeEncodedHeader decodes RFC 2047 encoded words
func decodeEncodedHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
