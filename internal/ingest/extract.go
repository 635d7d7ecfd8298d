package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	gopdf "github.com/ledongthuc/pdf"

	"cardforge/internal/domain"
)

// ExtractText converts raw file bytes into plain text for the given format.
// Plain-text formats pass through unchanged; markup formats are reduced to
// their visible text with paragraph breaks preserved.
func ExtractText(format domain.SourceFormat, data []byte) (string, error) {
	switch format {
	case domain.SourceFormatTXT, domain.SourceFormatMarkdown:
		return string(data), nil
	case domain.SourceFormatHTML:
		return extractHTML(data)
	case domain.SourceFormatPDF:
		return extractPDF(data)
	case domain.SourceFormatDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// blockSelector lists the elements treated as paragraph-level blocks when
// flattening HTML.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, pre, blockquote, td"

func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, noscript").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// Skip blocks that contain other blocks to avoid duplicated text.
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			blocks = append(blocks, text)
		}
	})

	if len(blocks) == 0 {
		// Markup without block structure; fall back to the whole body text.
		return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil
	}

	return strings.Join(blocks, "\n\n"), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := gopdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var sb strings.Builder
	for p := 1; p <= reader.NumPage(); p++ {
		page := reader.Page(p)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not lose the document.
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}

// extractDOCX reads word/document.xml out of the OOXML archive and collects
// the text runs, inserting a paragraph break at each closing paragraph tag.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening DOCX archive: %w", err)
	}

	var document io.ReadCloser
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			document, err = file.Open()
			if err != nil {
				return "", fmt.Errorf("opening document part: %w", err)
			}
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("no document part in DOCX archive")
	}
	defer func() {
		_ = document.Close()
	}()

	var sb strings.Builder
	inText := false

	decoder := xml.NewDecoder(document)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing document XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
