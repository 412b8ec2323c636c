package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/purplesanya/tg-bot/shared/api"
	"github.com/purplesanya/tg-bot/shared/domain"
)

// FilePart is one newly uploaded attachment.
type FilePart struct {
	Name        string
	ContentType string
	Data        []byte
}

// TaskForm is the multipart body of schedule and update requests.
type TaskForm struct {
	ChatIds       []domain.ChatId
	Message       string
	Name          string
	IntervalValue int
	IntervalUnit  domain.IntervalUnit
	Files         []FilePart
	// FinalOrder is the stable identifier of every attachment in display
	// order: a reference for existing files, the filename for new ones.
	FinalOrder []string

	// KeepExisting is sent on update only.
	KeepExisting []string
	// SendImmediately is sent on create only; nil omits the field.
	SendImmediately *bool
}

func joinChatIds(ids []domain.ChatId) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// jsonList encodes a possibly nil slice; the backend expects "[]", never "null".
func jsonList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f TaskForm) fields(update bool) ([][2]string, error) {
	finalOrder, err := jsonList(f.FinalOrder)
	if err != nil {
		return nil, err
	}
	fields := [][2]string{
		{api.FieldChatIds, joinChatIds(f.ChatIds)},
		{api.FieldMessage, f.Message},
		{api.FieldTaskName, f.Name},
		{api.FieldIntervalValue, strconv.Itoa(f.IntervalValue)},
		{api.FieldIntervalUnit, string(f.IntervalUnit)},
		{api.FieldFinalOrder, finalOrder},
	}
	if update {
		keep, err := jsonList(f.KeepExisting)
		if err != nil {
			return nil, err
		}
		fields = append(fields, [2]string{api.FieldKeepExisting, keep})
	} else if f.SendImmediately != nil {
		fields = append(fields, [2]string{api.FieldSendImmediately, strconv.FormatBool(*f.SendImmediately)})
	}
	return fields, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// postMultipart streams the task form through a pipe so file bodies are not
// buffered twice.
func (c *APIClient) postMultipart(ctx context.Context, route, path string, form TaskForm, update bool, out any) error {
	fields, err := form.fields(update)
	if err != nil {
		return fmt.Errorf("failed to encode task form: %w", err)
	}

	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)

	go func() {
		defer pipeWriter.Close()
		defer writer.Close()

		for _, kv := range fields {
			if err := writer.WriteField(kv[0], kv[1]); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}

		for _, file := range form.Files {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition",
				fmt.Sprintf(`form-data; name="%s"; filename="%s"`, api.FieldFiles, escapeQuotes(file.Name)))
			if file.ContentType != "" {
				h.Set("Content-Type", file.ContentType)
			} else {
				h.Set("Content-Type", "application/octet-stream")
			}

			part, err := writer.CreatePart(h)
			if err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, bytes.NewReader(file.Data)); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}
	}()

	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		route:       route,
		body:        pipeReader,
		contentType: writer.FormDataContentType(),
	}, out)
	// Unblocks the writer goroutine if the request failed before draining the body.
	pipeReader.Close()
	return err
}
