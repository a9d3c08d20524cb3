// File: pkg/combine/file_processing.go
package combine

import (
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// WriteFileSection appends the content section of one file. Text that is not
// valid UTF-8 is decoded as ISO-8859-1 and labelled as such. A read error, or
// a failed fallback decode, is written as an inline note instead of content.
// Only errors writing to w are returned.
func WriteFileSection(w io.Writer, label string, data []byte, readErr error) error {
	if readErr != nil {
		return writeReadError(w, label, readErr)
	}

	text, encoding, err := decodeText(data)
	if err != nil {
		return writeReadError(w, label, err)
	}

	header := fmt.Sprintf("\n\n--- File: %s ---\n\n", label)
	if encoding != "" {
		header = fmt.Sprintf("\n\n--- File: %s (%s encoding) ---\n\n", label, encoding)
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

// decodeText returns the text of data and the name of the fallback encoding
// used, or "" for UTF-8.
func decodeText(data []byte) (string, string, error) {
	if utf8.Valid(data) {
		return string(data), "", nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	return string(decoded), "ISO-8859-1", nil
}

func writeReadError(w io.Writer, label string, err error) error {
	_, werr := fmt.Fprintf(w, "\n\nError reading %s: %v\n\n", label, err)
	return werr
}
