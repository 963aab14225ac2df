package storage

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educoreai-lotus/content-studio/internal/config"
	"github.com/educoreai-lotus/content-studio/internal/domain"
)

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Enabled:     true,
		Endpoint:    "localhost:9000",
		AccessKey:   "testkey",
		SecretKey:   "testsecret",
		Bucket:      "topic-content",
		VideoBucket: "avatar-videos",
	}
}

func TestNewClient_Disabled(t *testing.T) {
	cfg := testStorageConfig()
	cfg.Enabled = false

	client, err := NewClient(cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.False(t, client.IsConfigured())
}

func TestNewClient_Enabled(t *testing.T) {
	client, err := NewClient(testStorageConfig(), zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.True(t, client.IsConfigured())
}

func TestClient_Disabled_Operations(t *testing.T) {
	cfg := testStorageConfig()
	cfg.Enabled = false
	client, err := NewClient(cfg, zerolog.Nop(), nil)
	require.NoError(t, err)

	ctx := context.Background()

	err = client.DeleteFile(ctx, "audio/lesson.mp3")
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)

	err = client.DeleteVideo(ctx, "videos/lesson.mp4")
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)

	err = client.EnsureBuckets(ctx)
	assert.NoError(t, err)
}

func TestClient_Delete_EmptyPath(t *testing.T) {
	client, err := NewClient(testStorageConfig(), zerolog.Nop(), nil)
	require.NoError(t, err)

	err = client.Delete(context.Background(), "topic-content", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractStoragePath(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantBucket string
		wantPath   string
		wantOK     bool
	}{
		{
			name:       "content bucket URL",
			url:        "http://localhost:9000/storage/v1/object/public/topic-content/presentations/topic-1.pdf",
			wantBucket: "topic-content",
			wantPath:   "presentations/topic-1.pdf",
			wantOK:     true,
		},
		{
			name:       "video bucket URL",
			url:        "https://cdn.example.com/storage/v1/object/public/avatar-videos/videos/topic-1.mp4",
			wantBucket: "avatar-videos",
			wantPath:   "videos/topic-1.mp4",
			wantOK:     true,
		},
		{
			name:   "external URL without marker",
			url:    "https://videos.example.com/rendered/topic-1.mp4",
			wantOK: false,
		},
		{
			name:   "marker but no object path",
			url:    "http://localhost:9000/storage/v1/object/public/topic-content/",
			wantOK: false,
		},
		{
			name:   "marker but no bucket",
			url:    "http://localhost:9000/storage/v1/object/public/",
			wantOK: false,
		},
		{
			name:   "empty URL",
			url:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, path, ok := ExtractStoragePath(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantBucket, bucket)
				assert.Equal(t, tt.wantPath, path)
			}
		})
	}
}
