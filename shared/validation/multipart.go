package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ValidateAndParseMultipart caps the request body at maxSize and parses the
// form. Once the cap is hit the server stops reading and the browser sees a
// reset connection.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
	}
	return nil
}

// Upload is one received file held in memory until it is sent on.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReadUploads loads the files of one form field. At most max files are
// accepted and none may exceed maxFileSize bytes.
func ReadUploads(headers []*multipart.FileHeader, max int, maxFileSize int64) ([]Upload, error) {
	if len(headers) > max {
		return nil, fmt.Errorf("%w: %d files, at most %d allowed", ErrTooManyAttachments, len(headers), max)
	}
	out := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxFileSize {
			return nil, fmt.Errorf("%w: %s is %.1f MB, limit is %.1f MB", ErrPayloadTooLarge, fh.Filename, FormatSizeMB(fh.Size), FormatSizeMB(maxFileSize))
		}
		data, err := readFile(fh, maxFileSize)
		if err != nil {
			return nil, err
		}
		out = append(out, Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data})
	}
	return out, nil
}

func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", ErrPayloadTooLarge, fh.Filename)
	}
	return data, nil
}

// CalculateMaxRequestSize adds room for form fields and multipart framing.
func CalculateMaxRequestSize(maxAttachmentSize int64, bufferSize int64) int64 {
	return maxAttachmentSize + bufferSize
}

func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}
