package mediahost

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type ClientMinio interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type MinioBackend struct {
	Client    ClientMinio
	Bucket    string
	PublicURL string
}

func NewMinioBackend(endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*MinioBackend, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("mediahost: create minio client: %w", err)
	}
	if publicURL == "" {
		publicURL = endpointURL(endpoint, useSSL) + "/" + bucket
	}
	return &MinioBackend{Client: client, Bucket: bucket, PublicURL: publicURL}, nil
}

func (b *MinioBackend) Put(ctx context.Context, obj Object) (string, error) {
	_, err := b.Client.PutObject(ctx, b.Bucket, obj.Key,
		bytes.NewReader(obj.Body), int64(len(obj.Body)),
		minio.PutObjectOptions{ContentType: obj.ContentType, UserMetadata: obj.Metadata},
	)
	if err != nil {
		payload := err.Error()
		if resp := minio.ToErrorResponse(err); resp.Code != "" {
			payload = resp.Code + ": " + resp.Message
		}
		return "", &UploadError{Payload: payload, Err: err}
	}
	return publicURL(b.PublicURL, obj.Key), nil
}
