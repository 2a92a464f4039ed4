package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeStore struct {
	key         string
	contentType string
	size        int64
	body        []byte
	err         error
}

func (f *fakeStore) PutObject(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.key, f.contentType, f.size, f.body = key, contentType, size, data
	return "https://cdn.example.com/" + key, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 7, 4, 10, 0, 0, 0, time.UTC)
}

func newTestService(store Store) *Service {
	return NewWithClock(store, fixedNow, prometheus.NewRegistry())
}

func errorCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %T (%v)", err, err)
	}
	return svcErr.Code
}

func TestUploadStoresUnderDatedKey(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	payload := bytes.Repeat([]byte("x"), 10_000)
	var progress []int64
	result, err := svc.Upload(context.Background(), UploadParams{
		AdminID:     "admin-1",
		Filename:    "Hero Shot (Final).JPG",
		ContentType: "image/jpeg",
		Size:        int64(len(payload)),
		Body:        bytes.NewReader(payload),
		Progress:    func(n int64) { progress = append(progress, n) },
	})
	if err != nil {
		t.Fatalf("upload error: %v", err)
	}

	keyPattern := regexp.MustCompile(`^media/2024/07/[0-9a-f-]{36}-hero-shot-final-.jpg$`)
	if !keyPattern.MatchString(result.Key) {
		t.Fatalf("unexpected key %q", result.Key)
	}
	if result.URL != "https://cdn.example.com/"+result.Key || result.Kind != "image" {
		t.Fatalf("unexpected result %#v", result)
	}
	if !bytes.Equal(store.body, payload) {
		t.Fatal("stored body differs from upload")
	}
	if len(progress) == 0 || progress[len(progress)-1] != int64(len(payload)) {
		t.Fatalf("progress did not reach the full size: %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] <= progress[i-1] {
			t.Fatalf("progress is not cumulative: %v", progress)
		}
	}
}

func TestUploadInfersTypeFromExtension(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	result, err := svc.Upload(context.Background(), UploadParams{
		AdminID:     "admin-1",
		Filename:    "walkaround.mp4",
		ContentType: "application/octet-stream",
		Size:        4,
		Body:        strings.NewReader("data"),
	})
	if err != nil {
		t.Fatalf("upload error: %v", err)
	}
	if result.ContentType != "video/mp4" || result.Kind != "video" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestUploadRejections(t *testing.T) {
	svc := newTestService(&fakeStore{})
	ctx := context.Background()

	cases := []struct {
		name   string
		params UploadParams
		want   ErrorCode
	}{
		{"no admin", UploadParams{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("a")}, ErrorCodeForbidden},
		{"pdf", UploadParams{AdminID: "a", Filename: "a.pdf", ContentType: "application/pdf", Size: 1, Body: strings.NewReader("a")}, ErrorCodeUnsupported},
		{"empty", UploadParams{AdminID: "a", Filename: "a.png", ContentType: "image/png", Size: 0, Body: strings.NewReader("")}, ErrorCodeValidation},
		{"too large", UploadParams{AdminID: "a", Filename: "a.png", ContentType: "image/png", Size: MaxUploadSize + 1, Body: strings.NewReader("a")}, ErrorCodeTooLarge},
		{"short body", UploadParams{AdminID: "a", Filename: "a.png", ContentType: "image/png", Size: 10, Body: strings.NewReader("abc")}, ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tc.params)
			if code := errorCode(t, err); code != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, code)
			}
		})
	}
}

func TestUploadAcceptsExactLimit(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.Upload(context.Background(), UploadParams{
		AdminID:     "admin-1",
		Filename:    "big.webp",
		ContentType: "image/webp",
		Size:        MaxUploadSize,
		Body:        io.LimitReader(zeroReader{}, MaxUploadSize),
	})
	if err != nil {
		t.Fatalf("upload at the limit failed: %v", err)
	}
	if store.size != MaxUploadSize {
		t.Fatalf("unexpected stored size %d", store.size)
	}
}

func TestUploadStoreFailure(t *testing.T) {
	svc := newTestService(&fakeStore{err: errors.New("bucket unavailable")})
	_, err := svc.Upload(context.Background(), UploadParams{
		AdminID: "a", Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("a"),
	})
	if code := errorCode(t, err); code != ErrorCodeInternal {
		t.Fatalf("expected internal error, got %s", code)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Hero Shot.JPG":       "hero-shot.jpg",
		"../../etc/passwd":    "passwd",
		`C:\photos\front.png`: "front.png",
		"???":                 "upload",
	}
	for in, want := range cases {
		if got := sanitizeName(in); got != want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
