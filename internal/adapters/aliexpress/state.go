package aliexpress

import (
	"bytes"
	"encoding/json"
	"fmt"

	"reviewking/internal/domain"
)

const runParamsMarker = "window.runParams"

// Shape of the hydration blob the product page embeds for its own JS.
type runParamsState struct {
	Data struct {
		FeedbackModule struct {
			FeedbackList []feedbackRecord `json:"feedbackList"`
		} `json:"feedbackModule"`
	} `json:"data"`
}

// parseEmbeddedState pulls reviews out of the page's window.runParams
// assignment. Pages without the marker, or with a blob that does not
// carry a feedback module, yield an empty slice.
func parseEmbeddedState(page []byte, productID string) ([]domain.Review, error) {
	blob, ok := extractRunParams(page)
	if !ok {
		return nil, nil
	}
	var state runParamsState
	if err := json.Unmarshal(blob, &state); err != nil {
		return nil, fmt.Errorf("decode embedded state: %w", err)
	}
	list := state.Data.FeedbackModule.FeedbackList
	reviews := make([]domain.Review, 0, len(list))
	for i, rec := range list {
		reviews = append(reviews, rec.toReview(productID, i+1))
	}
	return reviews, nil
}

// extractRunParams isolates the JSON object assigned to runParams by
// balancing braces from the first '{' after the marker. String
// literals and escapes are honored so braces inside review text do not
// end the scan early.
func extractRunParams(page []byte) ([]byte, bool) {
	idx := bytes.Index(page, []byte(runParamsMarker))
	if idx < 0 {
		return nil, false
	}
	rest := page[idx+len(runParamsMarker):]
	open := bytes.IndexByte(rest, '{')
	if open < 0 {
		return nil, false
	}
	// Nothing but whitespace and '=' may sit between marker and blob.
	for _, c := range rest[:open] {
		switch c {
		case ' ', '\t', '\n', '\r', '=':
		default:
			return nil, false
		}
	}

	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(rest); i++ {
		c := rest[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return rest[open : i+1], true
			}
		}
	}
	return nil, false
}
