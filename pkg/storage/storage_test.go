package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUpload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/static/avatars/")
	require.NoError(t, err)

	url, err := s.UploadImage(context.Background(), strings.NewReader("fake image"), "avatars", "me.PNG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/static/avatars/avatars/"))
	assert.True(t, strings.HasSuffix(url, ".png"), "extension should be lower-cased: %s", url)

	stored := filepath.Join(dir, "avatars", filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "fake image", string(data))

	// Two uploads of the same filename must not collide.
	second, err := s.UploadImage(context.Background(), strings.NewReader("other"), "avatars", "me.PNG")
	require.NoError(t, err)
	assert.NotEqual(t, url, second)
}

func TestLocalStorageDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/static/avatars")
	require.NoError(t, err)

	url, err := s.UploadImage(context.Background(), strings.NewReader("x"), "avatars", "gone.jpg")
	require.NoError(t, err)

	require.NoError(t, s.DeleteImage(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "avatars", filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))

	// Deleting something already gone is not an error.
	assert.NoError(t, s.DeleteImage(context.Background(), url))
}

func TestLocalStorageDeleteRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/static/avatars")
	require.NoError(t, err)

	assert.Error(t, s.DeleteImage(context.Background(), "/static/avatars/../../etc/passwd"))
	assert.Error(t, s.DeleteImage(context.Background(), "/static/avatars/"))
}
