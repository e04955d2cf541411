package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const DefaultMaxLogoBytes = 2 << 20

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var logoExt = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// SaveLogo sniffs r, checks the type is an allowed image and stores it as
// logos/<uuid><ext>. The declared filename only matters for SVG, which
// cannot be told apart from other XML by content sniffing alone.
func SaveLogo(ctx context.Context, store BlobStore, filename string, r io.Reader, maxBytes int64) (key, contentType string, err error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLogoBytes
	}
	br := bufio.NewReaderSize(r, 512)
	head, _ := br.Peek(512)
	contentType = sniff(head, filename)
	ext, ok := logoExt[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	// Read one byte past the limit to detect oversize uploads.
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(br, maxBytes+1))
	if err != nil {
		return "", "", err
	}
	if n > maxBytes {
		return "", "", ErrTooLarge
	}
	key, err = store.Put(ctx, "logos/"+uuid.NewString()+ext, &buf)
	if err != nil {
		return "", "", err
	}
	return key, contentType, nil
}

func sniff(head []byte, filename string) string {
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if _, ok := logoExt[ct]; ok {
		return ct
	}
	if strings.EqualFold(filepath.Ext(filename), ".svg") && bytes.Contains(bytes.ToLower(head), []byte("<svg")) {
		return "image/svg+xml"
	}
	return ct
}
