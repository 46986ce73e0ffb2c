package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	appDb "github.com/navbryce/feed-be/db"
	"github.com/pkg/errors"
)

const (
	imageKeyPrefix     = "image:"
	contentTypeMetaKey = "type"
	DefaultContentType = "application/octet-stream"
)

var ErrImageNotFound = errors.New("image not found")

type Image struct {
	Id          string
	Data        []byte
	ContentType string
}

// ImageStore persists image blobs under generated ids. Blobs are immutable once written.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (url string, err error)
	Retrieve(ctx context.Context, id string) (*Image, error)
}

// ImageURL builds the public reference for a blob id.
func ImageURL(publicURL, id string) string {
	return fmt.Sprintf("%v/images/%v", strings.TrimRight(publicURL, "/"), id)
}

// KVImageStore keeps blobs in the key-value store next to the posts collection,
// with the content type as entry metadata.
type KVImageStore struct {
	kv        appDb.KVStore
	publicURL string
}

func NewKVImageStore(kv appDb.KVStore, publicURL string) *KVImageStore {
	return &KVImageStore{kv: kv, publicURL: publicURL}
}

func (s *KVImageStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	id := uuid.NewString()
	if err := s.kv.Put(ctx, imageKeyPrefix+id, data, appDb.Metadata{contentTypeMetaKey: contentType}); err != nil {
		return "", errors.Wrap(err, "error storing image")
	}
	return ImageURL(s.publicURL, id), nil
}

func (s *KVImageStore) Retrieve(ctx context.Context, id string) (*Image, error) {
	data, metadata, err := s.kv.GetWithMetadata(ctx, imageKeyPrefix+id)
	if appDb.IsNotFound(err) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "error reading image")
	}
	contentType := metadata[contentTypeMetaKey]
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Image{Id: id, Data: data, ContentType: contentType}, nil
}
