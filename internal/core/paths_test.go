package core

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestPathGuard_Local(t *testing.T) {
	root := t.TempDir()
	g := newPathGuard(root)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"relative", "data.csv", filepath.Join(g.root, "data.csv"), nil},
		{"nested", "in/data.csv", filepath.Join(g.root, "in", "data.csv"), nil},
		{"absolute inside", filepath.Join(g.root, "data.csv"), filepath.Join(g.root, "data.csv"), nil},
		{"dot dot", "../data.csv", "", ErrPathNotAllowed},
		{"dot dot after dir", "in/../../data.csv", "", ErrPathNotAllowed},
		{"absolute outside", "/etc/passwd", "", ErrPathNotAllowed},
		{"s3 under local root", "s3://bucket/data.csv", "", ErrPathNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.resolve(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("resolve(%q) err = %v, want %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathGuard_S3(t *testing.T) {
	g := newPathGuard("s3://bucket/exports")

	tests := []struct {
		path    string
		wantErr error
	}{
		{"s3://bucket/exports/day.csv", nil},
		{"s3://bucket/exports/2024/day.csv", nil},
		{"s3://bucket/exportsX/day.csv", ErrPathNotAllowed},
		{"s3://bucket/other/day.csv", ErrPathNotAllowed},
		{"s3://bucket/exports/../other/day.csv", ErrPathNotAllowed},
		{"s3://other/exports/day.csv", ErrPathNotAllowed},
		{"/tmp/day.csv", ErrPathNotAllowed},
	}
	for _, tt := range tests {
		if _, err := g.resolve(tt.path); !errors.Is(err, tt.wantErr) {
			t.Errorf("resolve(%q) err = %v, want %v", tt.path, err, tt.wantErr)
		}
	}

	whole := newPathGuard("s3://bucket")
	if _, err := whole.resolve("s3://bucket/any/day.csv"); err != nil {
		t.Errorf("bucket root: resolve err = %v, want nil", err)
	}
}

func TestPathGuard_Disabled(t *testing.T) {
	if _, err := newPathGuard("").resolve("data.csv"); !errors.Is(err, ErrPathChecksDisabled) {
		t.Errorf("err = %v, want ErrPathChecksDisabled", err)
	}
}
