// Package extract converts uploaded resume files into plain text.
// Libraries used: github.com/ledongthuc/pdf (PDF), github.com/nguyenthenguyen/docx (DOCX)
// and github.com/gabriel-vasile/mimetype (content sniffing).
package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxUploadSize caps the accepted upload body.
const MaxUploadSize = 10 << 20 // 10MB

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Kind is the decoding strategy chosen for a file.
type Kind string

const (
	KindText Kind = "text"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

// AcceptedExtensions lists the extensions offered by the upload control.
var AcceptedExtensions = []string{".txt", ".md", ".json", ".pdf", ".docx"}

var errInvalidUTF8 = errors.New("file is not valid UTF-8 text")

// ExtractionError reports that a file could not be converted to text.
type ExtractionError struct {
	FileName string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %q: %v", e.FileName, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FromBytes extracts text from an in-memory upload. No partial text is returned on failure.
func FromBytes(ctx context.Context, data []byte, fileName, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch DetectKind(fileName, mimeType, data) {
	case KindPDF:
		text, err = extractPDF(data)
	case KindDOCX:
		text, err = extractDOCX(data)
	default:
		text, err = decodeText(data)
	}
	if err != nil {
		return "", &ExtractionError{FileName: fileName, Err: err}
	}
	return text, nil
}

// DetectKind resolves the decoding strategy: extension first, then the declared
// MIME type, then content sniffing. Unknown extensions decode as raw text.
func DetectKind(fileName, mimeType string, data []byte) Kind {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case "":
	default:
		return KindText
	}

	switch normalizeMimeType(mimeType) {
	case mimePDF:
		return KindPDF
	case mimeDOCX:
		return KindDOCX
	case "", "application/octet-stream", "application/zip":
	default:
		return KindText
	}

	detected := mimetype.Detect(data)
	switch {
	case detected.Is(mimePDF):
		return KindPDF
	case detected.Is(mimeDOCX):
		return KindDOCX
	default:
		return KindText
	}
}

func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	return string(data), nil
}

// extractPDF reads pages in order. Each shown text item inside a page is joined
// by one space, pages by a newline. The pdf package panics on some malformed inputs.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		items := pdfPageItems(reader.Page(i))
		pages = append(pages, strings.Join(strings.Fields(strings.Join(items, " ")), " "))
	}
	return strings.Join(pages, "\n"), nil
}

// pdfWordGap is the TJ adjustment, in thousandths of an em, treated as a word break.
const pdfWordGap = -250

// pdfPageItems returns the page's text items in content-stream order. Every
// Tj, ' and " operand is one item; a TJ array is one item unless it carries a
// word-sized gap.
func pdfPageItems(page pdf.Page) []string {
	if page.V.IsNull() || page.V.Key("Contents").IsNull() {
		return nil
	}

	encoders := make(map[string]pdf.TextEncoding)
	for _, name := range page.Fonts() {
		encoders[name] = page.Font(name).Encoder()
	}

	var (
		items []string
		enc   pdf.TextEncoding
	)
	decode := func(raw string) string {
		if enc == nil {
			return raw
		}
		return enc.Decode(raw)
	}
	pdf.Interpret(page.V.Key("Contents"), func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if len(args) == 2 {
				enc = encoders[args[0].Name()]
			}
		case "Tj", "'", "\"":
			if len(args) > 0 {
				items = append(items, decode(args[len(args)-1].RawString()))
			}
		case "TJ":
			if len(args) != 1 {
				return
			}
			var run strings.Builder
			arr := args[0]
			for i := 0; i < arr.Len(); i++ {
				el := arr.Index(i)
				if el.Kind() == pdf.String {
					run.WriteString(decode(el.RawString()))
					continue
				}
				if el.Float64() <= pdfWordGap {
					items = append(items, run.String())
					run.Reset()
				}
			}
			items = append(items, run.String())
		}
	})
	return items
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent())
}

// stripDocxXML keeps character data and turns paragraph and break ends into newlines.
func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
