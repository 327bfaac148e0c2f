// Package source opens CSV inputs as sequential streams.
//
// Local paths are opened from disk. Paths of the form s3://bucket/key are
// streamed from S3 using the AWS SDK's default credential chain.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/JonMunkholm/csvdata/internal/csvio"
)

const s3Scheme = "s3://"

// File is an open input.
type File struct {
	io.ReadCloser
	Name string
	Size int64 // 0 when unknown
}

// Opener opens a path for sequential reading.
type Opener interface {
	Open(ctx context.Context, path string) (*File, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (*File, error)

// Open calls f(ctx, path).
func (f OpenerFunc) Open(ctx context.Context, path string) (*File, error) { return f(ctx, path) }

// Resolver opens local files and S3 objects.
type Resolver struct {
	region string

	once   sync.Once
	client s3iface.S3API
	err    error
}

// NewResolver creates a Resolver. region may be empty, in which case the
// SDK resolves it from the environment.
func NewResolver(region string) *Resolver {
	return &Resolver{region: region}
}

// NewResolverWithClient creates a Resolver using a preconfigured S3 client.
func NewResolverWithClient(client s3iface.S3API) *Resolver {
	r := &Resolver{client: client}
	r.once.Do(func() {})
	return r
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns a process-wide Resolver using the environment's region.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = NewResolver("")
	})
	return defaultResolver
}

// IsS3 reports whether path names an S3 object.
func IsS3(path string) bool {
	return strings.HasPrefix(path, s3Scheme)
}

// Open opens path. A path that does not exist yields *csvio.FileNotFoundError.
func (r *Resolver) Open(ctx context.Context, path string) (*File, error) {
	if IsS3(path) {
		return r.openS3(ctx, path)
	}
	return OpenLocal(path)
}

// OpenLocal opens a file on disk.
func OpenLocal(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &csvio.FileNotFoundError{Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &csvio.FileNotFoundError{Path: path, Err: err}
	}
	if info.IsDir() {
		f.Close()
		return nil, &csvio.FileNotFoundError{Path: path, Err: fmt.Errorf("is a directory: %w", fs.ErrInvalid)}
	}
	return &File{ReadCloser: f, Name: path, Size: info.Size()}, nil
}

// ParseS3Path splits s3://bucket/key into its bucket and key.
func ParseS3Path(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 path %q: want s3://bucket/key", path)
	}
	return bucket, key, nil
}

func (r *Resolver) s3Client() (s3iface.S3API, error) {
	r.once.Do(func() {
		cfg := aws.NewConfig()
		if r.region != "" {
			cfg = cfg.WithRegion(r.region)
		}
		sess, err := session.NewSessionWithOptions(session.Options{
			Config:            *cfg,
			SharedConfigState: session.SharedConfigEnable,
		})
		if err != nil {
			r.err = fmt.Errorf("aws session: %w", err)
			return
		}
		r.client = s3.New(sess)
	})
	return r.client, r.err
}

func (r *Resolver) openS3(ctx context.Context, path string) (*File, error) {
	bucket, key, err := ParseS3Path(path)
	if err != nil {
		return nil, err
	}
	client, err := r.s3Client()
	if err != nil {
		return nil, err
	}

	out, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, &csvio.FileNotFoundError{Path: path, Err: fmt.Errorf("%w: %v", fs.ErrNotExist, err)}
		}
		return nil, fmt.Errorf("s3 get %s: %w", path, err)
	}
	return &File{
		ReadCloser: out.Body,
		Name:       path,
		Size:       aws.Int64Value(out.ContentLength),
	}, nil
}

func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
		return true
	}
	return false
}
