package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/fsgate/internal/providers/filesystem"
)

// maxFieldBytes bounds a non-file multipart field read into memory
const maxFieldBytes = 64 << 10

// filePayload is the JSON body accepted by create and update
type filePayload struct {
	Content  *string `json:"content"`
	FileData *string `json:"fileData"`
}

// upload is a decoded create payload ready to be streamed to the store
type upload struct {
	body io.Reader
	size int64
}

func textUpload(content string) upload {
	return upload{body: strings.NewReader(content), size: int64(len(content))}
}

func bytesUpload(data []byte) upload {
	return upload{body: bytes.NewReader(data), size: int64(len(data))}
}

// fromFields picks the payload out of decoded JSON or form fields. A
// present fileData wins over content; neither means an empty file.
func fromFields(p filePayload) (upload, error) {
	if p.FileData != nil {
		data, err := filesystem.DecodeDataURI(*p.FileData)
		if err != nil {
			return upload{}, err
		}
		return bytesUpload(data), nil
	}
	if p.Content != nil {
		return textUpload(*p.Content), nil
	}
	return textUpload(""), nil
}

func mediaType(c *gin.Context) string {
	mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// decodeJSON decodes the request body, keeping size-limit failures
// distinguishable from malformed input
func decodeJSON(c *gin.Context, v any) error {
	err := json.NewDecoder(c.Request.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return &filesystem.Error{
		Kind:    filesystem.KindBadRequest,
		Code:    filesystem.CodeBadRequest,
		Message: "invalid JSON body",
		Err:     err,
	}
}

// withUpload decodes the create payload and hands it to write. Multipart
// file parts are streamed straight through without buffering.
func withUpload(c *gin.Context, write func(upload) error) error {
	switch mediaType(c) {
	case "application/json":
		var p filePayload
		if err := decodeJSON(c, &p); err != nil {
			return err
		}
		up, err := fromFields(p)
		if err != nil {
			return err
		}
		return write(up)

	case "multipart/form-data":
		return withMultipart(c, write)

	case "application/x-www-form-urlencoded":
		var p filePayload
		if v, ok := c.GetPostForm("content"); ok {
			p.Content = &v
		}
		if v, ok := c.GetPostForm("fileData"); ok {
			p.FileData = &v
		}
		up, err := fromFields(p)
		if err != nil {
			return err
		}
		return write(up)

	default:
		// Raw bytes, e.g. application/octet-stream
		return write(upload{body: c.Request.Body, size: c.Request.ContentLength})
	}
}

func withMultipart(c *gin.Context, write func(upload) error) error {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		return &filesystem.Error{
			Kind:    filesystem.KindBadRequest,
			Code:    filesystem.CodeBadRequest,
			Message: "invalid multipart body",
			Err:     err,
		}
	}

	var fields filePayload
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return err
			}
			return &filesystem.Error{
				Kind:    filesystem.KindBadRequest,
				Code:    filesystem.CodeBadRequest,
				Message: "invalid multipart body",
				Err:     err,
			}
		}

		switch part.FormName() {
		case "file":
			defer part.Close()
			return write(upload{body: part, size: -1})
		case "content", "fileData":
			data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			part.Close()
			if err != nil {
				return err
			}
			if len(data) > maxFieldBytes {
				return &filesystem.Error{
					Kind:    filesystem.KindPayloadTooLarge,
					Code:    filesystem.CodePayloadTooLarge,
					Message: "form field too large, send the content as a file part",
				}
			}
			value := string(data)
			if part.FormName() == "content" {
				fields.Content = &value
			} else {
				fields.FileData = &value
			}
		default:
			part.Close()
		}
	}

	up, err := fromFields(fields)
	if err != nil {
		return err
	}
	return write(up)
}
