package domain

import (
	"encoding/json"
	"strings"
)

// ExerciseKind tags the decoded shape of a devlab_exercises payload.
type ExerciseKind int

const (
	// ExerciseAbsent means the field was null, empty, or undecodable.
	ExerciseAbsent ExerciseKind = iota

	// ExerciseText means the field was a plain (non-JSON) string.
	ExerciseText

	// ExerciseList means the field was an array of exercises.
	ExerciseList

	// ExerciseStructured means the field was an {html, questions, metadata}
	// style object.
	ExerciseStructured
)

// DevLabExercises is the normalized internal representation of the
// historically polymorphic devlab_exercises field. All four stored shapes
// (absent, JSON-encoded string, array, object) decode into this one type
// so validation never branches on raw JSON at the use site.
type DevLabExercises struct {
	Kind ExerciseKind

	// Text holds the trimmed plain-string payload for ExerciseText.
	Text string

	// Items holds the array elements for ExerciseList.
	Items []json.RawMessage

	// HTML and Questions hold the structured-object fields for
	// ExerciseStructured. Keys carries every top-level key of the object
	// for the weak any-key-but-metadata fallback.
	HTML      string
	Questions []json.RawMessage
	Keys      []string
}

// DecodeDevLabExercises normalizes a raw devlab_exercises value. A string
// value is first parsed as JSON and, if that succeeds, decoded recursively;
// otherwise it is kept as a plain text payload.
func DecodeDevLabExercises(raw json.RawMessage) DevLabExercises {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return DevLabExercises{Kind: ExerciseAbsent}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return DevLabExercises{Kind: ExerciseAbsent}
		}
		return decodeExerciseString(s)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return DevLabExercises{Kind: ExerciseAbsent}
		}
		return DevLabExercises{Kind: ExerciseList, Items: items}
	case '{':
		return decodeExerciseObject(raw)
	default:
		// Bare scalars (numbers, booleans) carry no exercises.
		return DevLabExercises{Kind: ExerciseAbsent}
	}
}

// decodeExerciseString handles the string shape: JSON-encoded payloads
// recurse on the parsed value, anything else falls back to a plain string.
func decodeExerciseString(s string) DevLabExercises {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return DevLabExercises{Kind: ExerciseAbsent}
	}
	if trimmed[0] == '[' || trimmed[0] == '{' || trimmed[0] == '"' {
		if json.Valid([]byte(trimmed)) {
			return DecodeDevLabExercises(json.RawMessage(trimmed))
		}
	}
	return DevLabExercises{Kind: ExerciseText, Text: trimmed}
}

func decodeExerciseObject(raw json.RawMessage) DevLabExercises {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return DevLabExercises{Kind: ExerciseAbsent}
	}

	ex := DevLabExercises{Kind: ExerciseStructured}
	for key := range obj {
		ex.Keys = append(ex.Keys, key)
	}
	if rawHTML, ok := obj["html"]; ok {
		var html string
		if err := json.Unmarshal(rawHTML, &html); err == nil {
			ex.HTML = html
		}
	}
	if rawQuestions, ok := obj["questions"]; ok {
		var questions []json.RawMessage
		if err := json.Unmarshal(rawQuestions, &questions); err == nil {
			ex.Questions = questions
		}
	}
	return ex
}

// IsValid reports whether the exercises payload counts as present for
// publication purposes:
//
//   - absent: invalid
//   - plain string: valid when non-blank
//   - array: valid when non-empty
//   - object: valid with a non-empty questions array, a non-blank html
//     string, or (weak fallback) any key other than metadata
func (e DevLabExercises) IsValid() bool {
	switch e.Kind {
	case ExerciseText:
		return strings.TrimSpace(e.Text) != ""
	case ExerciseList:
		return len(e.Items) > 0
	case ExerciseStructured:
		if len(e.Questions) > 0 {
			return true
		}
		if strings.TrimSpace(e.HTML) != "" {
			return true
		}
		for _, key := range e.Keys {
			if key != "metadata" {
				return true
			}
		}
		return false
	default:
		return false
	}
}
