package attachments

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// Meta is what the form preview needs to know about a file.
type Meta struct {
	MimeType string
	Width    *int
	Height   *int
}

func (m Meta) IsImage() bool { return strings.HasPrefix(m.MimeType, "image/") }
func (m Meta) IsVideo() bool { return strings.HasPrefix(m.MimeType, "video/") }

// Inspect detects the MIME type from the declared type, then the extension,
// then the content itself, and decodes image dimensions when possible.
func Inspect(name, contentType string, data []byte) Meta {
	meta := Meta{MimeType: DetectMimeType(name, contentType, data)}
	meta.Width, meta.Height = ExtractImageDimensions(data, meta.MimeType)
	return meta
}

func DetectMimeType(name, contentType string, data []byte) string {
	mimeType := contentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		if detected := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); detected != "" {
			mimeType = detected
		}
	}
	if (mimeType == "" || mimeType == "application/octet-stream") && len(data) > 0 {
		mimeType = http.DetectContentType(data)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if base, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = base
	}
	return mimeType
}

func ExtractImageDimensions(data []byte, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") || len(data) == 0 {
		return nil, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil
	}
	width, height := cfg.Width, cfg.Height
	return &width, &height
}

// metaFromName guesses the type of a stored file from its reference.
func metaFromName(reference string) Meta {
	return Meta{MimeType: DetectMimeType(path.Base(reference), "", nil)}
}
