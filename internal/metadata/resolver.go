// Package metadata resolves the lesson metadata (title, description,
// language, skills) that parametrizes a generation run.
//
// Stored topic metadata always wins. When the stored title or description
// is missing, substitutes are derived from the transcript: language
// detection (classifier collaborator if available, else a Unicode-range
// heuristic) followed by metadata extraction (LLM collaborator if
// available, else a deterministic first-sentence fallback). Collaborator
// failure never raises; it degrades to the fallback path with a warning.
package metadata

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/ai"
	"github.com/educoreai-lotus/content-studio/internal/repository"
)

// Derivation limits for the deterministic fallback.
const (
	maxTitleLength   = 80
	maxConcepts      = 5
	minConceptLength = 7
)

// defaultLanguage is the generic Latin-script fallback code.
const defaultLanguage = "en"

// LanguageDetector is an optional classifier collaborator. When absent or
// failing, the Unicode-range heuristic is used instead.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// Metadata is the resolved lesson metadata for one topic.
type Metadata struct {
	Title       string
	Description string
	Language    string
	Skills      []string
}

// Resolver resolves topic metadata from storage with transcript-derived
// substitutes.
type Resolver struct {
	topics    repository.TopicRepository
	detector  LanguageDetector
	extractor ai.MetadataExtractor
	logger    zerolog.Logger
}

// NewResolver creates a metadata resolver. detector and extractor are
// optional; pass nil to always use the heuristic/fallback paths.
func NewResolver(topics repository.TopicRepository, detector LanguageDetector, extractor ai.MetadataExtractor, logger zerolog.Logger) *Resolver {
	return &Resolver{
		topics:    topics,
		detector:  detector,
		extractor: extractor,
		logger:    logger.With().Str("component", "metadata_resolver").Logger(),
	}
}

// Resolve returns the metadata for a topic, deriving substitutes from the
// transcript when the stored title or description is missing.
func (r *Resolver) Resolve(ctx context.Context, topicID uuid.UUID, transcript string) (*Metadata, error) {
	topic, err := r.topics.Get(ctx, topicID)
	if err != nil {
		return nil, err
	}

	meta := &Metadata{
		Title:       strings.TrimSpace(topic.Name),
		Description: strings.TrimSpace(topic.Description),
		Language:    topic.Language,
		Skills:      topic.Skills,
	}
	if meta.Language == "" {
		meta.Language = r.detectLanguage(ctx, transcript)
	}
	if meta.Title != "" && meta.Description != "" {
		return meta, nil
	}

	derived := r.deriveFromTranscript(ctx, transcript, meta.Language, topicID)
	if meta.Title == "" {
		meta.Title = derived.Title
	}
	if meta.Description == "" {
		meta.Description = derived.Description
	}
	if len(meta.Skills) == 0 {
		meta.Skills = derived.Concepts
	}
	return meta, nil
}

// detectLanguage classifies the transcript language, preferring the
// collaborator and degrading to the Unicode-range heuristic.
func (r *Resolver) detectLanguage(ctx context.Context, text string) string {
	if r.detector != nil {
		lang, err := r.detector.DetectLanguage(ctx, text)
		if err == nil && lang != "" {
			return lang
		}
		if err != nil {
			r.logger.Warn().Err(err).Msg("Language detector failed, falling back to script heuristic")
		}
	}
	return DetectLanguageByScript(text)
}

// deriveFromTranscript produces substitute metadata, preferring the LLM
// extractor and degrading to the deterministic fallback.
func (r *Resolver) deriveFromTranscript(ctx context.Context, transcript, language string, topicID uuid.UUID) *ai.ExtractedMetadata {
	if r.extractor != nil {
		extracted, err := r.extractor.ExtractMetadata(ctx, ai.ExtractionRequest{
			Transcript: transcript,
			Language:   language,
		})
		if err == nil && extracted != nil && extracted.Title != "" {
			return extracted
		}
		r.logger.Warn().Err(err).
			Str("topic_id", topicID.String()).
			Msg("Metadata extractor failed, falling back to deterministic extraction")
	}
	return FallbackMetadata(transcript)
}

// DetectLanguageByScript classifies text by Unicode script ranges. It
// recognizes Hebrew (U+0590-U+05FF) and Arabic (U+0600-U+06FF) and
// defaults to a generic Latin-script code otherwise.
func DetectLanguageByScript(text string) string {
	var hebrew, arabic, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case r >= 0x0590 && r <= 0x05FF:
			hebrew++
		case r >= 0x0600 && r <= 0x06FF:
			arabic++
		}
	}
	if letters == 0 {
		return defaultLanguage
	}
	// A third of the letters in a script is enough to classify a mixed
	// transcript.
	if hebrew*3 >= letters && hebrew >= arabic {
		return "he"
	}
	if arabic*3 >= letters {
		return "ar"
	}
	return defaultLanguage
}

// FallbackMetadata derives metadata deterministically: the transcript's
// first sentence (truncated) becomes the title and the first long words
// become placeholder concepts.
func FallbackMetadata(transcript string) *ai.ExtractedMetadata {
	title := truncate(firstSentence(transcript), maxTitleLength)
	return &ai.ExtractedMetadata{
		Title:       title,
		Description: title,
		Concepts:    longWords(transcript, maxConcepts),
	}
}

// firstSentence returns the text up to the first sentence terminator.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			return strings.TrimSpace(text[:i])
		}
	}
	return text
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}

// longWords returns up to max distinct words of at least minConceptLength
// runes, in order of first appearance.
func longWords(text string, max int) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if utf8.RuneCountInString(word) < minConceptLength {
			continue
		}
		key := strings.ToLower(word)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, word)
		if len(words) >= max {
			break
		}
	}
	return words
}
