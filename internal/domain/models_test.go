package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllFormatsOrderAndTypeIDs(t *testing.T) {
	formats := AllFormats()
	require.Len(t, formats, 6)

	for i, format := range formats {
		assert.Equal(t, i+1, format.TypeID(), "format %s", format)
		assert.True(t, format.IsGenerated())
	}

	assert.Equal(t, FormatText, formats[0])
	assert.Equal(t, FormatAvatarVideo, formats[5])
}

func TestContentFormatResultKeys(t *testing.T) {
	tests := []struct {
		format ContentFormat
		key    string
	}{
		{FormatText, "text_audio"},
		{FormatCode, "code_examples"},
		{FormatPresentation, "slides"},
		{FormatAudio, "audio"},
		{FormatMindMap, "mind_map"},
		{FormatAvatarVideo, "avatar_video"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.key, tt.format.ResultKey())
	}
}

func TestRowAliases(t *testing.T) {
	assert.Equal(t, []ContentFormat{FormatText, FormatTextAudio}, FormatText.RowAliases())
	assert.Equal(t, []ContentFormat{FormatAudio, FormatTextAudio}, FormatAudio.RowAliases())
	assert.Equal(t, []ContentFormat{FormatCode}, FormatCode.RowAliases())
}

func TestBuildContentSetAlwaysSixEntries(t *testing.T) {
	topicID := uuid.New()

	tests := []struct {
		name        string
		rows        []*Content
		wantPresent map[ContentFormat]bool
	}{
		{
			name:        "no rows at all",
			rows:        nil,
			wantPresent: map[ContentFormat]bool{},
		},
		{
			name: "legacy text_audio row satisfies text and audio",
			rows: []*Content{
				{ID: uuid.New(), TopicID: topicID, ContentType: FormatTextAudio},
			},
			wantPresent: map[ContentFormat]bool{FormatText: true, FormatAudio: true},
		},
		{
			name: "dedicated rows win over nothing",
			rows: []*Content{
				{ID: uuid.New(), TopicID: topicID, ContentType: FormatCode},
				{ID: uuid.New(), TopicID: topicID, ContentType: FormatMindMap},
			},
			wantPresent: map[ContentFormat]bool{FormatCode: true, FormatMindMap: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := BuildContentSet(tt.rows)
			require.Len(t, entries, 6)

			for _, entry := range entries {
				if tt.wantPresent[entry.ContentType] {
					assert.Equal(t, ContentEntryPresent, entry.Status, "format %s", entry.ContentType)
					assert.NotNil(t, entry.Content)
				} else {
					assert.Equal(t, ContentEntryMissing, entry.Status, "format %s", entry.ContentType)
					assert.Nil(t, entry.Content)
				}
			}
		})
	}
}

func TestBuildContentSetIgnoresDeletedRows(t *testing.T) {
	deleted := time.Now().UTC()
	rows := []*Content{
		{ID: uuid.New(), ContentType: FormatCode, DeletedAt: &deleted},
	}

	entries := BuildContentSet(rows)
	for _, entry := range entries {
		assert.Equal(t, ContentEntryMissing, entry.Status)
	}
}

func TestGeneratedContentEmbeddedFields(t *testing.T) {
	gc := &GeneratedContent{
		ContentType: FormatAvatarVideo,
		Data: map[string]any{
			"videoUrl": "https://cdn.example.com/storage/v1/object/public/videos/topic-1.mp4",
			"error":    "render farm unavailable",
		},
	}

	assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/videos/topic-1.mp4", gc.VideoURL())
	assert.Equal(t, "render farm unavailable", gc.EmbeddedError())

	empty := &GeneratedContent{ContentType: FormatAvatarVideo}
	assert.Empty(t, empty.VideoURL())
	assert.Empty(t, empty.EmbeddedError())
}
