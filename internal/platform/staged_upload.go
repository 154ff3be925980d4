package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

type StagedTarget struct {
	URL         string `json:"url"`
	ResourceURL string `json:"resourceUrl"`
	Parameters  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"parameters"`
}

type UploadedFile struct {
	ID          string `json:"id"`
	Alt         string `json:"alt"`
	FileStatus  string `json:"fileStatus"`
	ResourceURL string `json:"resourceUrl"`
}

const stagedUploadsCreateMutation = `
mutation StagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets { url resourceUrl parameters { name value } }
    userErrors { field message }
  }
}`

const fileCreateMutation = `
mutation FileCreate($files: [FileCreateInput!]!) {
  fileCreate(files: $files) {
    files { id alt fileStatus }
    userErrors { field message }
  }
}`

type stagedUploadsData struct {
	StagedUploadsCreate struct {
		StagedTargets []StagedTarget `json:"stagedTargets"`
		UserErrors    []userError    `json:"userErrors"`
	} `json:"stagedUploadsCreate"`
}

type fileCreateData struct {
	FileCreate struct {
		Files      []UploadedFile `json:"files"`
		UserErrors []userError    `json:"userErrors"`
	} `json:"fileCreate"`
}

// StagedUploadResource maps a MIME type onto the platform's staged upload
// resource kind.
func StagedUploadResource(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "IMAGE"
	case strings.HasPrefix(mimeType, "video/"):
		return "VIDEO"
	default:
		return "FILE"
	}
}

// CreateStagedUpload asks the platform for a temporary signed upload target.
func (c *Client) CreateStagedUpload(ctx context.Context, filename, mimeType string, size int) (*StagedTarget, error) {
	input := map[string]any{
		"filename":   filename,
		"mimeType":   mimeType,
		"resource":   StagedUploadResource(mimeType),
		"httpMethod": "POST",
		"fileSize":   strconv.Itoa(size),
	}
	data, err := graphQL[stagedUploadsData](ctx, c, stagedUploadsCreateMutation, map[string]any{"input": []any{input}})
	if err != nil {
		return nil, err
	}
	if err := userErrorsErr("stagedUploadsCreate", data.StagedUploadsCreate.UserErrors); err != nil {
		return nil, err
	}
	if len(data.StagedUploadsCreate.StagedTargets) == 0 {
		return nil, &APIError{Status: http.StatusOK, Body: "stagedUploadsCreate: no target returned"}
	}
	return &data.StagedUploadsCreate.StagedTargets[0], nil
}

// UploadToTarget posts the file to the staged target as multipart form data,
// with the target's signed parameters first and the file last.
func (c *Client) UploadToTarget(ctx context.Context, target *StagedTarget, filename string, content []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range target.Parameters {
		if err := w.WriteField(p.Name, p.Value); err != nil {
			return fmt.Errorf("platform: staged form: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("platform: staged form: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("platform: staged form: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("platform: staged form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return fmt.Errorf("platform: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, nil)
}

// RegisterFile turns an uploaded staged resource into a platform file.
func (c *Client) RegisterFile(ctx context.Context, resourceURL, alt, mimeType string) (*UploadedFile, error) {
	contentType := StagedUploadResource(mimeType)
	file := map[string]any{
		"originalSource": resourceURL,
		"alt":            alt,
		"contentType":    contentType,
	}
	if contentType == "FILE" {
		delete(file, "contentType")
	}
	out, err := graphQL[fileCreateData](ctx, c, fileCreateMutation, map[string]any{"files": []any{file}})
	if err != nil {
		return nil, err
	}
	if err := userErrorsErr("fileCreate", out.FileCreate.UserErrors); err != nil {
		return nil, err
	}
	if len(out.FileCreate.Files) == 0 {
		return nil, &APIError{Status: http.StatusOK, Body: "fileCreate: no file returned"}
	}
	f := out.FileCreate.Files[0]
	f.ResourceURL = resourceURL
	return &f, nil
}

// StagedUpload runs the full three step flow: negotiate a target, upload the
// bytes there and register the result.
func (c *Client) StagedUpload(ctx context.Context, filename, mimeType, alt string, content []byte) (*UploadedFile, error) {
	target, err := c.CreateStagedUpload(ctx, filename, mimeType, len(content))
	if err != nil {
		return nil, err
	}
	if err := c.UploadToTarget(ctx, target, filename, content); err != nil {
		return nil, err
	}
	return c.RegisterFile(ctx, target.ResourceURL, alt, mimeType)
}
