package storage

import (
	"context"
	"io"
	"path"

	gcs "cloud.google.com/go/storage"

	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
)

// GCSStore keeps uploaded media in a Cloud Storage bucket and hands back
// the public URL.
type GCSStore struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCSStore(client *gcs.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *GCSStore) Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, path.Join(s.prefix, objectPath), contentType, r)
}
