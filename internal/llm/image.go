package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/recall/pkg/conversation"
)

// ErrUnresolvableImage indicates an image reference that cannot be turned
// into bytes (unknown form, fetch failure, unreadable file).
var ErrUnresolvableImage = errors.New("unresolvable image reference")

const (
	maxImageBytes     = 20 * 1024 * 1024 // provider request limits are lower anyway
	imageFetchTimeout = 30 * time.Second
	defaultMediaType  = "image/png"
)

var extMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// imageFetchClient is shared across resolutions; individual fetches are
// bounded by imageFetchTimeout on top of the caller's context.
var imageFetchClient = &http.Client{Timeout: imageFetchTimeout}

// ResolveImage turns an image reference into inline bytes suitable for a
// provider call. Supported forms: inline base64, data: URLs, http(s) URLs
// (fetched), and local file paths.
func ResolveImage(ctx context.Context, ref conversation.ImageRef) (Image, error) {
	switch {
	case ref.Base64Data != "":
		return decodeInline(ref.MediaType, ref.Base64Data)
	case strings.HasPrefix(ref.URL, "data:"):
		return decodeDataURL(ref.URL)
	case strings.HasPrefix(ref.URL, "http://"), strings.HasPrefix(ref.URL, "https://"):
		return fetchImage(ctx, ref.URL)
	case ref.Path != "":
		return loadImageFile(ref.Path)
	default:
		return Image{}, fmt.Errorf("%w: no usable source", ErrUnresolvableImage)
	}
}

func decodeInline(mediaType, data string) (Image, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Image{}, fmt.Errorf("%w: invalid base64: %v", ErrUnresolvableImage, err)
	}
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	return Image{MediaType: mediaType, Data: raw}, nil
}

// decodeDataURL parses data:<media-type>;base64,<payload>.
func decodeDataURL(u string) (Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: malformed data URL", ErrUnresolvableImage)
	}
	mediaType := strings.TrimSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: invalid data URL payload: %v", ErrUnresolvableImage, err)
	}
	return Image{MediaType: mediaType, Data: raw}, nil
}

func fetchImage(ctx context.Context, url string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnresolvableImage, err)
	}

	resp, err := imageFetchClient.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("%w: fetching %s: %v", ErrUnresolvableImage, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("%w: fetching %s: status %d", ErrUnresolvableImage, url, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("%w: reading %s: %v", ErrUnresolvableImage, url, err)
	}
	if len(raw) > maxImageBytes {
		return Image{}, fmt.Errorf("%w: image at %s exceeds %d bytes", ErrUnresolvableImage, url, maxImageBytes)
	}

	mediaType := resp.Header.Get("Content-Type")
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	return Image{MediaType: mediaType, Data: raw}, nil
}

func loadImageFile(path string) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnresolvableImage, err)
	}
	if info.Size() > maxImageBytes {
		return Image{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrUnresolvableImage, path, maxImageBytes)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUnresolvableImage, err)
	}

	mediaType, ok := extMediaTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mediaType = defaultMediaType
	}
	return Image{MediaType: mediaType, Data: raw}, nil
}
