package services

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const bucketImagePrefix = "images/"

// StorageBucket is the cloud-storage ImageStore: each blob is an object carrying its content type.
type StorageBucket struct {
	*storage.BucketHandle
	publicURL string
}

func NewStorageBucket(ctx context.Context, app *firebase.App, bucketName string, publicURL string) (*StorageBucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucketHandle, err := client.Bucket(bucketName)
	if err != nil {
		return nil, err
	}

	return &StorageBucket{
		BucketHandle: bucketHandle,
		publicURL:    publicURL,
	}, nil
}

func (sb *StorageBucket) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	id := uuid.NewString()
	// DoesNotExist keeps blobs write-once
	writer := sb.Object(bucketImagePrefix + id).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return "", errors.Wrap(err, "error writing image object")
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrap(err, "error finalizing image object")
	}
	return ImageURL(sb.publicURL, id), nil
}

func (sb *StorageBucket) Retrieve(ctx context.Context, id string) (*Image, error) {
	reader, err := sb.Object(bucketImagePrefix + id).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "error opening image object")
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "error reading image object")
	}
	contentType := reader.Attrs.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Image{Id: id, Data: data, ContentType: contentType}, nil
}
