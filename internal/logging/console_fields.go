package logging

import (
	"strings"
)

type infoField struct {
	label string
	value string
}

const infoAttrLimit = 8

// Keys promoted to the top of INFO output, in display order.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldErrorHint,
	"error",
	"outcome",
	"reason",
	"profile",
	"attempts",
	"characters",
	"language",
	"cards",
	"duration",
	"path",
}

// Keys already shown in the header, or too noisy for INFO.
var infoSkipKeys = map[string]struct{}{
	FieldVideoID:       {},
	FieldBackend:       {},
	FieldCorrelationID: {},
	"command":          {},
	"args":             {},
}

func selectInfoFields(attrs []kv, limit int) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, limit)
	hidden := 0

	add := func(idx int) {
		used[idx] = true
		if _, skip := infoSkipKeys[attrs[idx].key]; skip {
			return
		}
		if limit > 0 && len(result) >= limit {
			hidden++
			return
		}
		result = append(result, infoField{
			label: displayLabel(attrs[idx].key),
			value: formatValue(attrs[idx].value),
		})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				add(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			add(idx)
		}
	}
	return result, hidden
}

func displayLabel(key string) string {
	switch key {
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	case "characters":
		return "Chars"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}
