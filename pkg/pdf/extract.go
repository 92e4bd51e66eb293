// Package pdf pulls plain text out of uploaded PDF files.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnreadable = errors.New("unreadable pdf")

// Extract returns the text of every page that has any, pages joined by a
// newline. Malformed documents yield ErrUnreadable.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}

// ExtractBytes is Extract over an in-memory file.
func ExtractBytes(data []byte) (string, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}
