package domain

// ContentFormat identifies one of the six fixed content representations
// generated for a topic.
// These values must match the database enum content_type.
type ContentFormat string

const (
	FormatText         ContentFormat = "text"
	FormatCode         ContentFormat = "code"
	FormatPresentation ContentFormat = "presentation"
	FormatAudio        ContentFormat = "audio"
	FormatMindMap      ContentFormat = "mind_map"
	FormatAvatarVideo  ContentFormat = "avatar_video"

	// FormatTextAudio is the legacy combined row type that stores narrated
	// text together with its audio URL. The text and audio formats may both
	// resolve to a row of this type.
	FormatTextAudio ContentFormat = "text_audio"
)

// AllFormats returns the six generated formats in their fixed reporting
// order. The order determines the numeric type ids (1-6) sent to the
// generation collaborator; execution order during a generation run is not
// guaranteed.
func AllFormats() []ContentFormat {
	return []ContentFormat{
		FormatText,
		FormatCode,
		FormatPresentation,
		FormatAudio,
		FormatMindMap,
		FormatAvatarVideo,
	}
}

// formatInfo holds the fixed per-format attributes.
type formatInfo struct {
	typeID int
	label  string
	key    string
}

var formatTable = map[ContentFormat]formatInfo{
	FormatText:         {typeID: 1, label: "Narrated Text", key: "text_audio"},
	FormatCode:         {typeID: 2, label: "Code Examples", key: "code_examples"},
	FormatPresentation: {typeID: 3, label: "Slides", key: "slides"},
	FormatAudio:        {typeID: 4, label: "Audio Narration", key: "audio"},
	FormatMindMap:      {typeID: 5, label: "Mind Map", key: "mind_map"},
	FormatAvatarVideo:  {typeID: 6, label: "Avatar Video", key: "avatar_video"},
}

// TypeID returns the numeric content type id (1-6) used by the generation
// collaborator, or 0 for unknown formats.
func (f ContentFormat) TypeID() int {
	return formatTable[f].typeID
}

// Label returns the human-readable format label used in progress events.
func (f ContentFormat) Label() string {
	if info, ok := formatTable[f]; ok {
		return info.label
	}
	return string(f)
}

// ResultKey returns the fixed aggregate key under which this format is
// reported, regardless of completion order.
func (f ContentFormat) ResultKey() string {
	if info, ok := formatTable[f]; ok {
		return info.key
	}
	return string(f)
}

// IsGenerated reports whether f is one of the six generated formats.
func (f ContentFormat) IsGenerated() bool {
	_, ok := formatTable[f]
	return ok
}

// RowAliases returns the content row types that may satisfy this format,
// in lookup order. The text and audio formats fall back to the legacy
// combined text_audio row.
func (f ContentFormat) RowAliases() []ContentFormat {
	switch f {
	case FormatText, FormatAudio:
		return []ContentFormat{f, FormatTextAudio}
	default:
		return []ContentFormat{f}
	}
}

// ParseContentFormat converts a string to a ContentFormat, accepting both
// the canonical names and the aggregate keys.
func ParseContentFormat(s string) (ContentFormat, bool) {
	switch s {
	case string(FormatText), "text_audio":
		if s == "text_audio" {
			return FormatTextAudio, true
		}
		return FormatText, true
	case string(FormatCode), "code_examples":
		return FormatCode, true
	case string(FormatPresentation), "slides":
		return FormatPresentation, true
	case string(FormatAudio):
		return FormatAudio, true
	case string(FormatMindMap):
		return FormatMindMap, true
	case string(FormatAvatarVideo):
		return FormatAvatarVideo, true
	default:
		return "", false
	}
}
