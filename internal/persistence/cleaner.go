package persistence

import (
	"strings"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// Cleaner sanitizes a raw collaborator payload before it is written. The
// detailed per-format cleaning policy is a collaborator concern; the
// gateway only requires that cleaning is deterministic and never widens
// the payload.
type Cleaner interface {
	Clean(format domain.ContentFormat, data map[string]any) (map[string]any, error)
}

// WhitespaceCleaner is the default cleaning policy: it normalizes string
// fields recursively (trim, collapse CRLF) and leaves shape untouched.
type WhitespaceCleaner struct{}

// Compile-time interface check.
var _ Cleaner = (*WhitespaceCleaner)(nil)

// Clean returns a copy of data with all nested string values normalized.
func (WhitespaceCleaner) Clean(_ domain.ContentFormat, data map[string]any) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	cleaned, _ := cleanValue(data).(map[string]any)
	return cleaned, nil
}

func cleanValue(v any) any {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(strings.ReplaceAll(val, "\r\n", "\n"))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cleanValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cleanValue(inner)
		}
		return out
	default:
		return v
	}
}
