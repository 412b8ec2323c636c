package validation

import "errors"

var (
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrInvalidMimeType    = errors.New("only images and videos can be attached")
	ErrTooManyAttachments = errors.New("too many attachments")
)
