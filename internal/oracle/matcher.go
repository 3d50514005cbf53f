package oracle

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ppiankov/originality/internal/extract"
	"github.com/ppiankov/originality/internal/model"
)

// QueryPlaceholder is replaced by the unit text in the no-results marker template
const QueryPlaceholder = "{query}"

// Matcher classifies a provider response by looking for its "no results" marker
type Matcher struct {
	mode          model.MatchMode
	template      string
	resultsMarker string
}

// NewMatcher creates a matcher for the given marker template
func NewMatcher(mode model.MatchMode, template, resultsMarker string) (*Matcher, error) {
	if mode == "" {
		mode = model.MatchStrict
	}
	if mode != model.MatchStrict && mode != model.MatchLiteral {
		return nil, fmt.Errorf("unknown match mode %q", mode)
	}
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("no-results marker template is empty")
	}

	return &Matcher{
		mode:          mode,
		template:      template,
		resultsMarker: resultsMarker,
	}, nil
}

// Classify reports whether text is plagiarised given the provider's response body.
// A present marker means the provider found nothing, so the text is original.
func (m *Matcher) Classify(body, text string) (bool, error) {
	if strings.TrimSpace(body) == "" {
		return false, fmt.Errorf("%w: empty body", model.ErrUnrecognizedResponse)
	}

	marker := strings.ReplaceAll(m.template, QueryPlaceholder, strings.TrimSpace(text))

	var found bool
	switch m.mode {
	case model.MatchLiteral:
		found = strings.Contains(body, marker)
	default:
		visible, err := extract.VisibleText(body)
		if err != nil {
			visible = body
		}
		cleanMarker := Clean(marker)
		if cleanMarker == "" {
			return false, fmt.Errorf("%w: marker has no alphanumeric characters", model.ErrUnrecognizedResponse)
		}
		found = strings.Contains(Clean(visible), cleanMarker)
	}

	if found {
		return false, nil
	}

	if m.resultsMarker != "" && !strings.Contains(body, m.resultsMarker) {
		return false, fmt.Errorf("%w: neither the no-results marker nor %q is present", model.ErrUnrecognizedResponse, m.resultsMarker)
	}

	return true, nil
}

// Clean lower-cases s and drops everything that is not a letter or digit, so markup
// and whitespace around a phrase do not affect matching
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
