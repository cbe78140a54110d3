package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"portfolio/pkg/models"
)

// S3Options configures an S3Store. Region and static credentials are
// optional; the default AWS chain is used for anything left empty.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	MaxBytes        int64
}

// S3Store keeps uploads in an S3 bucket under <prefix>/<category dir>/<name>.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	maxBytes int64
	namer    Namer
}

// NewS3Store loads AWS configuration and builds the client.
func NewS3Store(ctx context.Context, opts S3Options, namer Namer) (*S3Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
		maxBytes: opts.MaxBytes,
		namer:    namer,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, category models.Category, originalName string, r io.Reader) (models.StoredFile, error) {
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
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("uploading %s: %w", key, err)
	}
	return storedFile(category, name, int64(len(data))), nil
}

func (s *S3Store) Open(ctx context.Context, category models.Category, name string) (io.ReadCloser, error) {
	key, err := s.key(category, name)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *S3Store) Remove(ctx context.Context, category models.Category, name string) (bool, error) {
	key, err := s.key(category, name)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// DeleteObject succeeds for missing keys, so existence is checked first.
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", key, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", key, err)
	}
	return true, nil
}

func (s *S3Store) List(ctx context.Context, category models.Category) ([]models.StoredFile, error) {
	dir, err := dirFor(category)
	if err != nil {
		return nil, err
	}
	prefix := path.Join(s.prefix, dir) + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	list := []models.StoredFile{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if !ValidName(name) {
				continue
			}
			list = append(list, storedFile(category, name, aws.ToInt64(obj.Size)))
		}
	}
	sortFiles(list)
	return list, nil
}

func (s *S3Store) key(category models.Category, name string) (string, error) {
	dir, err := dirFor(category)
	if err != nil {
		return "", err
	}
	if !ValidName(name) {
		return "", models.ErrNotFound
	}
	return path.Join(s.prefix, dir, name), nil
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
