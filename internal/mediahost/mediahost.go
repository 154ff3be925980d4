package mediahost

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	ResourceAuto  = "auto"
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"

	FilterNone  = "none"
	FilterSepia = "sepia"
	FilterBW    = "bw"
	FilterRetro = "retro"

	metaResourceType   = "resource-type"
	metaTransformation = "transformation"
)

var ErrEmptyUpload = errors.New("mediahost: empty upload")

// UploadError is returned when the host rejects an upload. Payload carries the
// host's own error body or code/message.
type UploadError struct {
	Payload string
	Err     error
}

func (e *UploadError) Error() string {
	return "mediahost: upload failed: " + e.Payload
}

func (e *UploadError) Unwrap() error { return e.Err }

// Object is what a Backend stores. Metadata holds host-side directives such
// as the transformation chain.
type Object struct {
	Key         string
	ContentType string
	Metadata    map[string]string
	Body        []byte
}

type Backend interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, obj Object) (string, error)
}

type Options struct {
	Folder       string
	ResourceType string
	Filter       string
}

type Result struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	ResourceType string `json:"resourceType"`
}

// Transformation translates a named filter into transform directives. The
// uploader bakes them into JPEG and PNG pixels and records the chain in the
// object metadata. Unknown names and "none" yield nil.
func Transformation(filter string) []string {
	switch normalizeFilter(filter) {
	case FilterSepia:
		return []string{"e_sepia"}
	case FilterBW:
		return []string{"e_grayscale"}
	case FilterRetro:
		return []string{"e_sepia", "e_vignette"}
	default:
		return nil
	}
}

type Uploader struct {
	Backend       Backend
	Folder        string
	MaxImageWidth uint

	newID func() string
}

func NewUploader(backend Backend, folder string, maxImageWidth uint) *Uploader {
	return &Uploader{
		Backend:       backend,
		Folder:        folder,
		MaxImageWidth: maxImageWidth,
		newID:         uuid.NewString,
	}
}

// Upload sends data to the host in a single attempt.
func (u *Uploader) Upload(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	mt := mimetype.Detect(data)
	resourceType := opts.ResourceType
	if resourceType == "" || resourceType == ResourceAuto {
		resourceType = DetectResourceType(mt.String())
	}

	if resourceType == ResourceImage {
		data = process(data, mt.String(), u.MaxImageWidth, opts.Filter)
	}

	folder := opts.Folder
	if folder == "" {
		folder = u.Folder
	}
	newID := u.newID
	if newID == nil {
		newID = uuid.NewString
	}
	publicID := path.Join(folder, newID())

	meta := map[string]string{metaResourceType: resourceType}
	if tr := Transformation(opts.Filter); len(tr) > 0 {
		meta[metaTransformation] = strings.Join(tr, "/")
	}

	url, err := u.Backend.Put(ctx, Object{
		Key:         publicID + mt.Extension(),
		ContentType: mt.String(),
		Metadata:    meta,
		Body:        data,
	})
	if err != nil {
		var upErr *UploadError
		if errors.As(err, &upErr) {
			return nil, err
		}
		return nil, &UploadError{Payload: err.Error(), Err: err}
	}

	return &Result{URL: url, PublicID: publicID, ResourceType: resourceType}, nil
}

func DetectResourceType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return ResourceImage
	case strings.HasPrefix(mimeType, "video/"):
		return ResourceVideo
	default:
		return ResourceRaw
	}
}

func publicURL(base, key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(key, "/"))
}
