package validation

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type file struct {
	name, contentType string
	data              []byte
}

func multipartRequest(t *testing.T, files ...file) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest("POST", "/compose/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadUploads(t *testing.T) {
	req := multipartRequest(t,
		file{"a.png", "image/png", []byte("png-bytes")},
		file{"b.mp4", "video/mp4", []byte("mp4")},
	)
	require.NoError(t, ValidateAndParseMultipart(req, httptest.NewRecorder(), 1<<20))

	uploads, err := ReadUploads(req.MultipartForm.File["files"], 10, 1<<10)
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("png-bytes")}, uploads[0])
	assert.Equal(t, "b.mp4", uploads[1].Filename)
}

func TestReadUploads_Limits(t *testing.T) {
	req := multipartRequest(t,
		file{"a.png", "image/png", bytes.Repeat([]byte{1}, 64)},
		file{"b.png", "image/png", []byte{1}},
	)
	require.NoError(t, ValidateAndParseMultipart(req, httptest.NewRecorder(), 1<<20))
	headers := req.MultipartForm.File["files"]

	_, err := ReadUploads(headers, 1, 1<<10)
	assert.True(t, errors.Is(err, ErrTooManyAttachments))

	_, err = ReadUploads(headers, 10, 10)
	assert.True(t, errors.Is(err, ErrPayloadTooLarge))
}

func TestValidateAndParseMultipart_TooLarge(t *testing.T) {
	req := multipartRequest(t, file{"a.png", "image/png", bytes.Repeat([]byte{1}, 4096)})
	err := ValidateAndParseMultipart(req, httptest.NewRecorder(), 512)
	assert.True(t, errors.Is(err, ErrPayloadTooLarge))
}
