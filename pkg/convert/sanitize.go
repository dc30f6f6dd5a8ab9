package convert

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/schema"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// StripTags returns an ExternalToInternal hook that removes markup from free
// text. Non-string values pass through.
func StripTags() schema.Converter {
	return func(_ context.Context, value any) (any, error) {
		s, ok := value.(string)
		if !ok {
			return value, nil
		}
		return SanitizeText(s), nil
	}
}

// SanitizeText strips every tag from raw and trims the result.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Chain runs converters in order, feeding each result to the next one.
func Chain(converters ...schema.Converter) schema.Converter {
	return func(ctx context.Context, value any) (any, error) {
		var err error
		for i, c := range converters {
			if c == nil {
				continue
			}
			if value, err = c(ctx, value); err != nil {
				return nil, fmt.Errorf("convert: chain step %d: %w", i, err)
			}
		}
		return value, nil
	}
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
