package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shashiranjanraj/mapstack/config"
)

// s3Disk talks to any S3-compatible object store (AWS S3, MinIO, R2,
// DigitalOcean Spaces). A custom endpoint switches the client to
// path-style addressing, which MinIO and most self-hosted stores expect.
type s3Disk struct {
	client *s3.Client
	bucket string
	url    string
}

func newS3Disk() (*s3Disk, error) {
	bucket := config.StorageS3Bucket()
	if bucket == "" {
		return nil, errors.New("storage: S3_BUCKET is not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.StorageS3Region()),
	}
	if key := config.StorageS3Key(); key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, config.StorageS3Secret(), ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := config.StorageS3Endpoint(); endpoint != "" {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		}
	})

	return &s3Disk{
		client: client,
		bucket: bucket,
		url:    strings.TrimRight(config.StorageS3URL(), "/"),
	}, nil
}

func (d *s3Disk) key(path string) string {
	return strings.TrimLeft(path, "/")
}

func (d *s3Disk) Put(path string, content []byte) error {
	return d.PutStream(path, bytes.NewReader(content))
}

func (d *s3Disk) PutStream(path string, r io.Reader) error {
	key := d.key(path)
	_, err := d.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("storage: s3 put %s: %w", path, err)
	}
	return nil
}

func (d *s3Disk) Get(path string) ([]byte, error) {
	rc, err := d.GetStream(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage: s3 read %s: %w", path, err)
	}
	return data, nil
}

func (d *s3Disk) GetStream(path string) (io.ReadCloser, error) {
	key := d.key(path)
	out, err := d.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: s3 get %s: %w", path, err)
	}
	return out.Body, nil
}

func (d *s3Disk) head(path string) (*s3.HeadObjectOutput, error) {
	key := d.key(path)
	return d.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
}

func (d *s3Disk) Exists(path string) bool {
	_, err := d.head(path)
	return err == nil
}

func (d *s3Disk) Missing(path string) bool { return !d.Exists(path) }

func (d *s3Disk) Size(path string) (int64, error) {
	out, err := d.head(path)
	if err != nil {
		return 0, fmt.Errorf("storage: s3 head %s: %w", path, err)
	}
	if out.ContentLength == nil {
		return 0, nil
	}
	return *out.ContentLength, nil
}

func (d *s3Disk) LastModified(path string) (time.Time, error) {
	out, err := d.head(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("storage: s3 head %s: %w", path, err)
	}
	if out.LastModified == nil {
		return time.Time{}, nil
	}
	return *out.LastModified, nil
}

func (d *s3Disk) URL(path string) string {
	if d.url != "" {
		return d.url + "/" + d.key(path)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		d.bucket, config.StorageS3Region(), d.key(path))
}

// Delete removes an object. S3 treats deleting a missing key as success,
// which matches the Disk contract.
func (d *s3Disk) Delete(path string) error {
	key := d.key(path)
	_, err := d.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete %s: %w", path, err)
	}
	return nil
}

func (d *s3Disk) Files(directory string) ([]string, error) {
	prefix := d.key(directory)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	delimiter := "/"

	paginator := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket:    &d.bucket,
		Prefix:    &prefix,
		Delimiter: &delimiter,
	})

	var files []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("storage: s3 list %s: %w", directory, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			name := strings.TrimPrefix(*obj.Key, prefix)
			if name != "" {
				files = append(files, name)
			}
		}
	}
	return files, nil
}

// MakeDirectory creates a zero-byte directory marker. Object stores have
// no real directories, so this only makes the prefix visible in listings.
func (d *s3Disk) MakeDirectory(path string) error {
	key := d.key(path)
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}
	_, err := d.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 mkdir %s: %w", path, err)
	}
	return nil
}
