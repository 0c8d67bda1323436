package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/recall/pkg/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func TestResolveImage_InlineBase64(t *testing.T) {
	img, err := ResolveImage(context.Background(), conversation.ImageRef{
		MediaType:  "image/png",
		Base64Data: base64.StdEncoding.EncodeToString(pngBytes),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MediaType)
	assert.Equal(t, pngBytes, img.Data)
}

func TestResolveImage_InlineBase64_DefaultMediaType(t *testing.T) {
	img, err := ResolveImage(context.Background(), conversation.ImageRef{
		Base64Data: base64.StdEncoding.EncodeToString(pngBytes),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MediaType)
}

func TestResolveImage_DataURL(t *testing.T) {
	url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	img, err := ResolveImage(context.Background(), conversation.ImageRef{URL: url})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MediaType)
	assert.Equal(t, pngBytes, img.Data)
}

func TestResolveImage_HTTPURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/webp; charset=binary")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	img, err := ResolveImage(context.Background(), conversation.ImageRef{URL: srv.URL + "/pic"})
	require.NoError(t, err)
	assert.Equal(t, "image/webp", img.MediaType)
	assert.Equal(t, pngBytes, img.Data)
}

func TestResolveImage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := ResolveImage(context.Background(), conversation.ImageRef{URL: srv.URL + "/missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableImage)
}

func TestResolveImage_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.JPG")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o600))

	img, err := ResolveImage(context.Background(), conversation.ImageRef{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MediaType)
	assert.Equal(t, pngBytes, img.Data)
}

func TestResolveImage_MissingFile(t *testing.T) {
	_, err := ResolveImage(context.Background(), conversation.ImageRef{Path: "/does/not/exist.png"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableImage)
}

func TestResolveImage_NoSource(t *testing.T) {
	_, err := ResolveImage(context.Background(), conversation.ImageRef{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableImage)
}

func TestResolveImage_InvalidBase64(t *testing.T) {
	_, err := ResolveImage(context.Background(), conversation.ImageRef{Base64Data: "!!!not-base64!!!"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableImage)
}
