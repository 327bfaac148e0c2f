package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvdata/internal/check"
	"github.com/JonMunkholm/csvdata/internal/config"
	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/source"
	"github.com/JonMunkholm/csvdata/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Check: config.CheckConfig{
			Delimiter:     ",",
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   50 * time.Millisecond,
			Timeout:       time.Minute,
			Workers:       2,
		},
		History: config.HistoryConfig{Retention: time.Hour, PruneInterval: time.Hour},
	}
}

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewServiceWithSource(st, source.NewResolver(""), testConfig()), st
}

// newRootedService returns a Service whose path checks are confined to a
// fresh temp dir, and that dir.
func newRootedService(t *testing.T) (*Service, *store.Memory, string) {
	t.Helper()
	root := t.TempDir()
	cfg := testConfig()
	cfg.Check.Root = root
	st := store.NewMemory()
	return NewServiceWithSource(st, source.NewResolver(""), cfg), st, root
}

func TestService_CheckUpload(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	body := "name,hair\nJohn,blonde\nLaura,\nBoris,blonde\n"
	opts := svc.DefaultOptions()
	opts.Duplicates = true

	run, err := svc.CheckUpload(ctx, "people.csv", strings.NewReader(body), int64(len(body)), opts)
	if err != nil {
		t.Fatalf("CheckUpload: %v", err)
	}
	if run.OK {
		t.Error("run.OK = true, want false")
	}
	if run.Path != "people.csv" || run.Report.Path != "people.csv" {
		t.Errorf("paths = %q / %q, want people.csv", run.Path, run.Report.Path)
	}
	if got := run.Report.DuplicateLines(1, "blonde"); len(got) != 2 {
		t.Errorf("DuplicateLines = %v, want 2 lines", got)
	}

	saved, err := st.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("run not saved: %v", err)
	}
	if saved.Report.ProblemCount() != run.Report.ProblemCount() {
		t.Errorf("saved report differs: %+v", saved.Report)
	}
}

func TestService_CheckUpload_TooLarge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CheckUpload(ctx, "big.csv", strings.NewReader("a\n"), 2<<20, svc.DefaultOptions())
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("declared size: err = %v, want ErrFileTooLarge", err)
	}

	// Unknown size: the limit applies while reading.
	big := "a\n" + strings.Repeat("x\n", 1<<20)
	_, err = svc.CheckUpload(ctx, "big.csv", strings.NewReader(big), -1, svc.DefaultOptions())
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("streamed size: err = %v, want ErrFileTooLarge", err)
	}
	if got := MapError(err).Code; got != "FILE001" {
		t.Errorf("MapError code = %q, want FILE001", got)
	}
}

func TestService_CheckUpload_NoFile(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CheckUpload(context.Background(), "", nil, 0, svc.DefaultOptions()); !errors.Is(err, ErrNoFile) {
		t.Errorf("err = %v, want ErrNoFile", err)
	}
	if _, err := svc.CheckPath(context.Background(), "", svc.DefaultOptions()); !errors.Is(err, ErrNoFile) {
		t.Errorf("err = %v, want ErrNoFile", err)
	}
}

func TestService_CheckPath(t *testing.T) {
	svc, _, root := newRootedService(t)
	ctx := context.Background()

	path := filepath.Join(root, "data.csv")
	if err := os.WriteFile(path, []byte("a;b\n1;2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := svc.DefaultOptions()
	opts.Delimiter = ";"
	run, err := svc.CheckPath(ctx, path, opts)
	if err != nil {
		t.Fatalf("CheckPath: %v", err)
	}
	if !run.OK {
		t.Errorf("run.OK = false: %+v", run.Report)
	}

	got, err := svc.Run(ctx, run.ID)
	if err != nil || got.ID != run.ID {
		t.Errorf("Run(%s) = %v, %v", run.ID, got, err)
	}
	runs, err := svc.Runs(ctx, 10)
	if err != nil || len(runs) != 1 {
		t.Errorf("Runs = %d runs, err %v; want 1", len(runs), err)
	}
}

func TestService_CheckPath_Errors(t *testing.T) {
	svc, st, root := newRootedService(t)
	ctx := context.Background()

	_, err := svc.CheckPath(ctx, filepath.Join(root, "missing.csv"), svc.DefaultOptions())
	var fe *csvio.FileNotFoundError
	if !errors.As(err, &fe) {
		t.Errorf("err = %v, want FileNotFoundError", err)
	}

	if err := os.WriteFile(filepath.Join(root, "bad.csv"), []byte("name,,age\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = svc.CheckPath(ctx, "bad.csv", svc.DefaultOptions())
	if got := MapError(err).Code; got != "HDR001" {
		t.Errorf("MapError code = %q, want HDR001 (err %v)", got, err)
	}

	if runs, _ := st.List(ctx, 0); len(runs) != 0 {
		t.Errorf("failed checks were saved: %d runs", len(runs))
	}
}

func TestService_CheckPath_OutsideRoot(t *testing.T) {
	svc, st, root := newRootedService(t)
	ctx := context.Background()

	outside := filepath.Join(t.TempDir(), "secret.csv")
	if err := os.WriteFile(outside, []byte("a\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(root, "link.csv")
	if err := os.Symlink(outside, link); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{
		outside,
		"../" + filepath.Base(filepath.Dir(outside)) + "/secret.csv",
		filepath.Join(root, "..", "secret.csv"),
		"link.csv",
		"s3://bucket/data.csv",
	} {
		_, err := svc.CheckPath(ctx, path, svc.DefaultOptions())
		if !errors.Is(err, ErrPathNotAllowed) {
			t.Errorf("CheckPath(%q) err = %v, want ErrPathNotAllowed", path, err)
		}
		if got := MapError(err).Code; got != "FILE007" {
			t.Errorf("CheckPath(%q) code = %q, want FILE007", path, got)
		}
	}

	if runs, _ := st.List(ctx, 0); len(runs) != 0 {
		t.Errorf("refused checks were saved: %d runs", len(runs))
	}
}

func TestService_CheckPath_Disabled(t *testing.T) {
	svc, _ := newTestService(t)

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CheckPath(context.Background(), path, svc.DefaultOptions())
	if !errors.Is(err, ErrPathChecksDisabled) {
		t.Errorf("err = %v, want ErrPathChecksDisabled", err)
	}
}

func TestService_RunNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Run(context.Background(), uuid.New()); !errors.Is(err, store.ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

// blockingReader holds a check open until release is closed.
type blockingReader struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingReader) Read(p []byte) (int, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return 0, errors.New("closed")
}

func TestService_LimiterRejectsWhenBusy(t *testing.T) {
	cfg := testConfig()
	cfg.Check.MaxConcurrent = 1
	svc := NewServiceWithSource(store.NewMemory(), source.NewResolver(""), cfg)

	br := &blockingReader{started: make(chan struct{}), release: make(chan struct{})}
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.CheckUpload(context.Background(), "slow.csv", br, -1, svc.DefaultOptions())
	}()
	<-br.started

	if got := svc.LimiterStatus().Active; got != 1 {
		t.Errorf("Active = %d, want 1", got)
	}
	_, err := svc.CheckUpload(context.Background(), "next.csv", strings.NewReader("a\n"), 2, svc.DefaultOptions())
	if !errors.Is(err, ErrTooManyChecks) {
		t.Errorf("err = %v, want ErrTooManyChecks", err)
	}

	close(br.release)
	<-done

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.WaitForChecks(ctx); err != nil {
		t.Errorf("WaitForChecks: %v", err)
	}
}

func TestService_DefaultOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Check.Delimiter = "|"
	svc := NewServiceWithSource(store.NewMemory(), source.NewResolver(""), cfg)

	opts := svc.DefaultOptions()
	want := check.DefaultOptions()
	want.Delimiter = "|"
	if opts.Delimiter != want.Delimiter || opts.EmptyValues != want.EmptyValues || opts.Log != want.Log {
		t.Errorf("DefaultOptions = %+v, want %+v", opts, want)
	}
}

func TestService_StartPruner(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	old := &store.Run{Path: "old.csv", CreatedAt: time.Now().Add(-2 * time.Hour)}
	fresh := &store.Run{Path: "fresh.csv"}
	for _, r := range []*store.Run{old, fresh} {
		if err := st.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		svc.StartPruner(pctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := st.Get(ctx, old.ID); errors.Is(err, store.ErrRunNotFound) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("pruner did not run on start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if _, err := st.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh run pruned: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pruner did not stop after cancel")
	}
}

func TestClientIPContext(t *testing.T) {
	ctx := ContextWithClientIP(context.Background(), "10.0.0.1")
	if got := ClientIPFromContext(ctx); got != "10.0.0.1" {
		t.Errorf("ClientIPFromContext = %q, want 10.0.0.1", got)
	}
	if got := ClientIPFromContext(context.Background()); got != "" {
		t.Errorf("ClientIPFromContext(empty) = %q, want empty", got)
	}
}
