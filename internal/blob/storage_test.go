package blob

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveAndFindRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	payload := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	require.NoError(t, s.SaveBase64(ctx, "photo.jpg", payload))

	found, err := s.FindBase64(ctx, "photo.jpg")
	require.NoError(t, err)
	require.Equal(t, payload, found)
}

func TestFindMissingBlob(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.FindBase64(context.Background(), "nope.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRequiresExistingBlob(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	payload := base64.StdEncoding.EncodeToString([]byte("v2"))

	err := s.UpdateBase64(ctx, "audio.mp3", payload)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SaveBase64(ctx, "audio.mp3", base64.StdEncoding.EncodeToString([]byte("v1"))))
	require.NoError(t, s.UpdateBase64(ctx, "audio.mp3", payload))

	found, err := s.FindBase64(ctx, "audio.mp3")
	require.NoError(t, err)
	require.Equal(t, payload, found)
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBase64(ctx, "gone.webp", base64.StdEncoding.EncodeToString([]byte("x"))))
	require.NoError(t, s.Delete(ctx, "gone.webp"))

	_, err := s.FindBase64(ctx, "gone.webp")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "gone.webp"), ErrNotFound)
}

func TestRejectsPathTraversal(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "a/b", "a\\b"} {
		require.ErrorIs(t, s.SaveBase64(ctx, name, ""), ErrInvalidName, "name %q", name)
	}
}

func TestSaveRejectsMalformedBase64(t *testing.T) {
	s := newTestStorage(t)
	require.Error(t, s.SaveBase64(context.Background(), "bad.bin", "not-base64!!"))
}
