package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// PDFText extracts the plain text of a PDF document. Documents the parser
// cannot read fail with ErrMalformedDocument.
func PDFText(data []byte, maxBytes int64) (text string, err error) {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	if mime := mimetype.Detect(data); !mime.Is("application/pdf") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime.String())
	}

	// the parser panics on some corrupt inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrMalformedDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	text = collapseWhitespace(string(raw))
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}
