package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// ArchiveStore keeps the raw text of every processed archive entry so that
// extraction fixes can be replayed without refetching from the bulk site.
//
// Objects are keyed "<year>/<entry name>", e.g. "2024/ipg240102.xml".
type ArchiveStore struct {
	client *Client
	logger logging.Logger
}

// NewArchiveStore builds an ArchiveStore on top of an established client.
func NewArchiveStore(client *Client, logger logging.Logger) *ArchiveStore {
	return &ArchiveStore{client: client, logger: logger.Named("archive_store")}
}

// ObjectKey renders the storage key for an archive entry.
func ObjectKey(year, entryName string) string {
	return path.Join(year, path.Base(entryName))
}

func contentTypeFor(entryName string) string {
	if strings.HasSuffix(strings.ToLower(entryName), ".xml") {
		return "application/xml"
	}
	return "text/plain"
}

// Put stores the raw bytes of one archive entry.
func (s *ArchiveStore) Put(ctx context.Context, year, entryName string, blob []byte) error {
	key := ObjectKey(year, entryName)

	_, err := s.client.api.PutObject(ctx, s.client.bucket, key,
		bytes.NewReader(blob), int64(len(blob)),
		minio.PutObjectOptions{ContentType: contentTypeFor(entryName)},
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeArchiveStoreFailed, "failed to store archive entry").WithDetail(key)
	}

	s.logger.Debug("archive entry stored",
		logging.String("key", key),
		logging.Int("bytes", len(blob)),
	)
	return nil
}

// Get returns the raw bytes of a previously stored entry.
func (s *ArchiveStore) Get(ctx context.Context, year, entryName string) ([]byte, error) {
	key := ObjectKey(year, entryName)

	obj, err := s.client.api.GetObject(ctx, s.client.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveStoreFailed, "failed to open archive entry").WithDetail(key)
	}
	defer obj.Close()

	blob, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeArchiveStoreFailed, "failed to read archive entry").WithDetail(key)
	}
	return blob, nil
}

// Exists reports whether an entry has already been stored.
func (s *ArchiveStore) Exists(ctx context.Context, year, entryName string) (bool, error) {
	key := ObjectKey(year, entryName)

	_, err := s.client.api.StatObject(ctx, s.client.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeArchiveStoreFailed, "failed to stat archive entry").WithDetail(key)
	}
	return true, nil
}

// ListYear returns the keys of all stored entries for one grant year.
func (s *ArchiveStore) ListYear(ctx context.Context, year string) ([]string, error) {
	var keys []string
	for info := range s.client.api.ListObjects(ctx, s.client.bucket, minio.ListObjectsOptions{
		Prefix:    year + "/",
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, errors.Wrap(info.Err, errors.ErrCodeArchiveStoreFailed, "failed to list archive entries")
		}
		keys = append(keys, info.Key)
	}
	return keys, nil
}
