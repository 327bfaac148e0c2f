package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/JonMunkholm/csvdata/internal/csvio"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	gotKey  string
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.gotKey = aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
	body, ok := f.objects[f.gotKey]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func TestResolver_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewResolver("").Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	if f.Size != 8 {
		t.Errorf("Size = %d, want 8", f.Size)
	}
	data, _ := io.ReadAll(f)
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("content = %q", data)
	}
}

func TestResolver_LocalMissing(t *testing.T) {
	_, err := NewResolver("").Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	var nf *csvio.FileNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Open() error = %v, want *FileNotFoundError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist")
	}
}

func TestResolver_LocalDirectory(t *testing.T) {
	_, err := OpenLocal(t.TempDir())
	var nf *csvio.FileNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("OpenLocal(dir) error = %v, want *FileNotFoundError", err)
	}
}

func TestResolver_S3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"bucket/in/data.csv": "h\nv\n"}}
	r := NewResolverWithClient(client)

	f, err := r.Open(context.Background(), "s3://bucket/in/data.csv")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	if client.gotKey != "bucket/in/data.csv" {
		t.Errorf("requested %q", client.gotKey)
	}
	if f.Size != 4 {
		t.Errorf("Size = %d, want 4", f.Size)
	}

	_, err = r.Open(context.Background(), "s3://bucket/missing.csv")
	var nf *csvio.FileNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("missing object error = %v, want *FileNotFoundError", err)
	}
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		path, bucket, key string
		wantErr           bool
	}{
		{"s3://b/k.csv", "b", "k.csv", false},
		{"s3://b/dir/k.csv", "b", "dir/k.csv", false},
		{"s3://b", "", "", true},
		{"s3:///k", "", "", true},
		{"s3://b/", "", "", true},
	}
	for _, tt := range tests {
		bucket, key, err := ParseS3Path(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseS3Path(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if bucket != tt.bucket || key != tt.key {
			t.Errorf("ParseS3Path(%q) = %q, %q", tt.path, bucket, key)
		}
	}
}
