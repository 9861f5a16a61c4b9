// Package statementtext reads a user-supplied statement file into raw text
// for the statement channel. CSV and plain-text files are passed through;
// PDF files are converted page by page.
package statementtext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var ErrNoText = errors.New("no readable text in statement")

// Read returns the full text of the file at path.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("statementtext.Read: %w", err)
	}
	return Parse(path, data)
}

// Parse extracts the text of a statement whose bytes were read from name.
// PDFs are recognized by extension or by their header.
func Parse(name string, data []byte) (string, error) {
	if strings.EqualFold(filepath.Ext(name), ".pdf") || IsPDF(data) {
		return FromPDF(data)
	}
	return FromPlain(data)
}

// IsPDF sniffs the PDF magic header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// FromPlain validates text input.
func FromPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("FromPlain: input is not UTF-8 text")
	}
	text := strings.TrimSpace(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// FromPDF extracts the text of every page, pages separated by a blank line.
func FromPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("FromPDF: PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("FromPDF: open: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	if len(pages) == 0 {
		// Fall back to whole-document extraction.
		reader, err := r.GetPlainText()
		if err != nil {
			return "", fmt.Errorf("FromPDF: plain text: %w", err)
		}
		all, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("FromPDF: read: %w", err)
		}
		if s := strings.TrimSpace(string(all)); s != "" {
			return s, nil
		}
		return "", ErrNoText
	}
	return strings.Join(pages, "\n\n"), nil
}
