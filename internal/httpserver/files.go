package httpserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/internal/service"
)

const maxUploadBytes = 25 << 20

type uploadedFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// readFile takes the "file" part of a multipart request, or decodes b64 when
// the request carried JSON. A request with neither yields an empty file.
func readFile(c echo.Context, b64 string) (uploadedFile, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			return uploadedFile{}, nil
		}
		if err != nil {
			return uploadedFile{}, fmt.Errorf("%w: file: %v", service.ErrValidation, err)
		}
		if fh.Size > maxUploadBytes {
			return uploadedFile{}, fmt.Errorf("%w: file too large", service.ErrValidation)
		}
		f, err := fh.Open()
		if err != nil {
			return uploadedFile{}, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
		if err != nil {
			return uploadedFile{}, err
		}
		return uploadedFile{Data: data, Filename: fh.Filename, ContentType: fh.Header.Get(echo.HeaderContentType)}, nil
	}

	if b64 == "" {
		return uploadedFile{}, nil
	}
	data, contentType, err := decodeBase64(b64)
	if err != nil {
		return uploadedFile{}, fmt.Errorf("%w: fileBase64: %v", service.ErrValidation, err)
	}
	if len(data) > maxUploadBytes {
		return uploadedFile{}, fmt.Errorf("%w: file too large", service.ErrValidation)
	}
	return uploadedFile{Data: data, ContentType: contentType}, nil
}

// decodeBase64 accepts plain base64 or a data URL.
func decodeBase64(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	contentType := ""
	if strings.HasPrefix(s, "data:") {
		comma := strings.Index(s, ",")
		if comma < 0 {
			return nil, "", errors.New("malformed data url")
		}
		meta := strings.TrimPrefix(s[:comma], "data:")
		contentType = strings.TrimSuffix(meta, ";base64")
		s = s[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}
