package ingest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/config"
	"cardforge/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader(NewCleaner(config.CleanerConfig{}), discardLogger())
	require.NoError(t, err)
	return loader
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		format   domain.SourceFormat
	}{
		{"notes.txt", domain.SourceFormatTXT},
		{"notes.TEXT", domain.SourceFormatTXT},
		{"readme.md", domain.SourceFormatMarkdown},
		{"guide.markdown", domain.SourceFormatMarkdown},
		{"page.html", domain.SourceFormatHTML},
		{"page.HTM", domain.SourceFormatHTML},
		{"paper.pdf", domain.SourceFormatPDF},
		{"report.docx", domain.SourceFormatDOCX},
	}

	for _, tc := range tests {
		format, err := DetectFormat(tc.filename)
		require.NoError(t, err, tc.filename)
		assert.Equal(t, tc.format, format, tc.filename)
	}
}

func TestDetectFormatUnsupported(t *testing.T) {
	t.Parallel()

	for _, filename := range []string{"archive.zip", "image.png", "noextension", "doc.doc"} {
		_, err := DetectFormat(filename)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, filename)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	english := "The mitochondrion is the powerhouse of the cell. It produces most " +
		"of the chemical energy needed to power the cell's biochemical reactions."
	assert.Equal(t, "eng", DetectLanguage(english))
}

func TestLoadBuildsPendingSource(t *testing.T) {
	t.Parallel()

	loader := testLoader(t)
	text := "Photosynthesis is the process by which plants convert light energy " +
		"into chemical energy.\n\nIt takes place in the chloroplasts of plant cells."

	source, err := loader.Load("Biology Notes", "notes.txt", []byte(text))
	require.NoError(t, err)

	assert.Equal(t, "Biology Notes", source.Title)
	assert.Equal(t, domain.SourceFormatTXT, source.Format)
	assert.Equal(t, domain.SourceStatusPending, source.Status)
	assert.Equal(t, "eng", source.Language)
	assert.Contains(t, source.Text, "Photosynthesis")
}

func TestLoadFallsBackToFilenameTitle(t *testing.T) {
	t.Parallel()

	loader := testLoader(t)
	source, err := loader.Load("", "/uploads/cell-biology.md", []byte("# Cells\n\nCells are small."))
	require.NoError(t, err)
	assert.Equal(t, "cell-biology", source.Title)
}

func TestLoadRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	loader := testLoader(t)
	_, err := loader.Load("Empty", "empty.txt", []byte("   \n\n \t "))
	assert.ErrorIs(t, err, ErrNoTextContent)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	t.Parallel()

	loader := testLoader(t)
	_, err := loader.Load("Data", "data.csv", []byte("a,b,c"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadCleansExtractedText(t *testing.T) {
	t.Parallel()

	loader, err := NewLoader(NewCleaner(config.CleanerConfig{RemoveURLs: true}), discardLogger())
	require.NoError(t, err)

	source, err := loader.Load("Links", "links.txt",
		[]byte("Read more at https://example.com/article today.\r\n\r\nSecond   paragraph."))
	require.NoError(t, err)

	assert.False(t, strings.Contains(source.Text, "example.com"))
	assert.Contains(t, source.Text, "Second paragraph.")
}
