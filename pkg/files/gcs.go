package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"portfolio/pkg/models"
)

// GCSStore keeps uploads in a Cloud Storage bucket under
// <prefix>/<category dir>/<name>.
type GCSStore struct {
	client   *storage.Client
	bucket   *storage.BucketHandle
	prefix   string
	maxBytes int64
	namer    Namer
}

// NewGCSStore connects with application default credentials.
func NewGCSStore(ctx context.Context, bucketName, prefix string, maxBytes int64, namer Namer) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		client:   client,
		bucket:   client.Bucket(bucketName),
		prefix:   prefix,
		maxBytes: maxBytes,
		namer:    namer,
	}, nil
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Put(ctx context.Context, category models.Category, originalName string, r io.Reader) (models.StoredFile, error) {
	dir, err := dirFor(category)
	if err != nil {
		return models.StoredFile{}, err
	}
	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return models.StoredFile{}, err
	}

	name := s.namer.Name(originalName)
	key := path.Join(s.prefix, dir, name)
	err = copyAndCommit(ctx, func(wctx context.Context) io.WriteCloser {
		writer := s.bucket.Object(key).NewWriter(wctx)
		writer.ContentType = contentType(name)
		return writer
	}, bytes.NewReader(data))
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("uploading %q: %w", key, err)
	}
	return storedFile(category, name, int64(len(data))), nil
}

// copyAndCommit streams r into the writer returned by open and closes it to
// commit. If the copy fails the writer's context is cancelled before Close,
// which makes a storage.Writer abandon the object instead of committing a
// partial one.
func copyAndCommit(ctx context.Context, open func(context.Context) io.WriteCloser, r io.Reader) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := open(wctx)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("Writer.Write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

func (s *GCSStore) Open(ctx context.Context, category models.Category, name string) (io.ReadCloser, error) {
	key, err := s.key(category, name)
	if err != nil {
		return nil, err
	}
	reader, err := s.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Object(%q).NewReader: %w", key, err)
	}
	return reader, nil
}

func (s *GCSStore) Remove(ctx context.Context, category models.Category, name string) (bool, error) {
	key, err := s.key(category, name)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Object(%q).Delete: %w", key, err)
	}
	return true, nil
}

func (s *GCSStore) List(ctx context.Context, category models.Category) ([]models.StoredFile, error) {
	dir, err := dirFor(category)
	if err != nil {
		return nil, err
	}
	prefix := path.Join(s.prefix, dir) + "/"
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	list := []models.StoredFile{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, err)
		}
		name := strings.TrimPrefix(attrs.Name, prefix)
		if !ValidName(name) {
			continue
		}
		list = append(list, storedFile(category, name, attrs.Size))
	}
	sortFiles(list)
	return list, nil
}

func (s *GCSStore) key(category models.Category, name string) (string, error) {
	dir, err := dirFor(category)
	if err != nil {
		return "", err
	}
	if !ValidName(name) {
		return "", models.ErrNotFound
	}
	return path.Join(s.prefix, dir, name), nil
}
