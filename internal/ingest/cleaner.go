package ingest

import (
	"regexp"
	"strings"

	"cardforge/internal/config"
)

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"]+`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// Lines holding only a page number, possibly dressed up ("Page 12",
	// "- 12 -"), are print artifacts from PDF extraction.
	pageArtifact = regexp.MustCompile(`(?i)^\s*(?:-\s*)?(?:page\s+)?\d{1,4}(?:\s*-)?\s*$`)

	// A word split across a line break by end-of-line hyphenation.
	hyphenBreak = regexp.MustCompile(`(\p{L})-\n(\p{L})`)

	// Three or more newlines collapse to a single paragraph break.
	blankRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns = regexp.MustCompile(`[ \t]+`)
)

// CleanStats records what the cleaning passes removed or repaired.
type CleanStats struct {
	URLsRemoved      int
	EmailsRemoved    int
	PageLinesRemoved int
	HyphensRepaired  int
}

// Cleaner normalizes extracted text before chunking: line endings, control
// characters, whitespace runs, print artifacts, and optionally URLs and
// email addresses.
type Cleaner struct {
	cfg config.CleanerConfig
}

// NewCleaner creates a Cleaner.
func NewCleaner(cfg config.CleanerConfig) *Cleaner {
	return &Cleaner{cfg: cfg}
}

// Clean returns the normalized text. Paragraph structure (blank lines) is
// preserved, since the chunker's paragraph strategy depends on it.
func (c *Cleaner) Clean(text string) string {
	cleaned, _ := c.CleanWithStats(text)
	return cleaned
}

// CleanWithStats runs the cleaning passes and reports what each removed.
func (c *Cleaner) CleanWithStats(text string) (string, CleanStats) {
	var stats CleanStats

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = stripControl(text)

	stats.HyphensRepaired = len(hyphenBreak.FindAllString(text, -1))
	text = hyphenBreak.ReplaceAllString(text, "$1$2")

	if c.cfg.RemoveURLs {
		stats.URLsRemoved = len(urlPattern.FindAllString(text, -1))
		text = urlPattern.ReplaceAllString(text, "")
	}
	if c.cfg.RemoveEmails {
		stats.EmailsRemoved = len(emailPattern.FindAllString(text, -1))
		text = emailPattern.ReplaceAllString(text, "")
	}

	text = spaceRuns.ReplaceAllString(text, " ")

	// Trim trailing spaces per line so blank-ish lines count as blank, and
	// drop standalone page-number lines.
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		if line != "" && pageArtifact.MatchString(line) {
			stats.PageLinesRemoved++
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = blankRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), stats
}

func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}
