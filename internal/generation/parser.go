package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cardforge/internal/domain"
)

// rawResponse mirrors the JSON shape the model is asked for. Entries are kept
// as raw messages so one malformed entry can be skipped without failing the
// whole array. Some models answer with "flashcards" instead of "cards".
type rawResponse struct {
	Cards      []json.RawMessage `json:"cards"`
	Flashcards []json.RawMessage `json:"flashcards"`
}

// rawCard accepts both the requested field names and the question/answer
// aliases that chat models commonly substitute.
type rawCard struct {
	Front      string `json:"front"`
	Question   string `json:"question"`
	Back       string `json:"back"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
}

// ParseResponse extracts card candidates from raw model output.
//
// The parse is tolerant-then-strict: the whole text is tried as JSON first;
// if that fails (models routinely wrap JSON in prose or code fences), the
// first balanced {...} span is located and reparsed. When neither attempt
// yields a card payload the whole response is rejected with
// ErrMalformedResponse.
//
// Entries missing a non-empty front or back after trimming are dropped and
// counted, not raised; quality validation beyond structural completeness is
// the validator's job. The caller-supplied chunkID is stamped on every
// candidate regardless of anything the model echoed back.
func ParseResponse(raw string, chunkID uuid.UUID) ([]domain.CardCandidate, int, error) {
	text := stripControlRunes(raw)

	resp, ok := decodeResponse(text)
	if !ok {
		span, found := firstBalancedObject(text)
		if found {
			resp, ok = decodeResponse(span)
		}
		if !ok {
			return nil, 0, fmt.Errorf("%w: no cards object found in %d bytes of output",
				ErrMalformedResponse, len(raw))
		}
	}

	entries := resp.Cards
	if entries == nil {
		entries = resp.Flashcards
	}

	candidates := make([]domain.CardCandidate, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		var card rawCard
		if err := json.Unmarshal(entry, &card); err != nil {
			dropped++
			continue
		}

		front := strings.TrimSpace(coalesce(card.Front, card.Question))
		back := strings.TrimSpace(coalesce(card.Back, card.Answer))
		if front == "" || back == "" {
			dropped++
			continue
		}

		candidates = append(candidates, domain.CardCandidate{
			Front:      front,
			Back:       back,
			Difficulty: domain.Difficulty(card.Difficulty),
			ChunkID:    chunkID,
		})
	}

	return candidates, dropped, nil
}

// decodeResponse reports success only when the text is a JSON object carrying
// a cards or flashcards key; an object with neither key holds no payload.
func decodeResponse(text string) (rawResponse, bool) {
	var resp rawResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return rawResponse{}, false
	}
	if resp.Cards == nil && resp.Flashcards == nil {
		return rawResponse{}, false
	}
	return resp, true
}

// firstBalancedObject returns the first balanced {...} span in text, tracking
// JSON string and escape state so braces inside string values do not count.
func firstBalancedObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	return "", false
}

// stripControlRunes drops stray control characters that some models emit,
// keeping ordinary whitespace intact.
func stripControlRunes(text string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
