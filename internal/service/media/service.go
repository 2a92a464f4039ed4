// Package media accepts admin uploads for the site's imagery and video and
// hands them to object storage.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	internalmetrics "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// MaxUploadSize caps a single upload at 25 MiB.
const MaxUploadSize int64 = 25 << 20

const maxNameLength = 80

var allowedTypes = map[string]string{
	"image/jpeg":      "image",
	"image/png":       "image",
	"image/webp":      "image",
	"image/gif":       "image",
	"image/avif":      "image",
	"image/svg+xml":   "image",
	"video/mp4":       "video",
	"video/webm":      "video",
	"video/quicktime": "video",
}

// videoExtensions covers types missing from the mime package's builtin table.
var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// Store persists one object and returns its public URL.
type Store interface {
	PutObject(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
}

// ProgressFunc receives the cumulative number of bytes read from the body.
type ProgressFunc func(written int64)

type UploadParams struct {
	AdminID     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Progress    ProgressFunc
}

type UploadResult struct {
	Key         string
	URL         string
	ContentType string
	Kind        string
	Size        int64
}

type Service struct {
	store   Store
	now     func() time.Time
	uploads *prometheus.CounterVec
	bytes   prometheus.Counter
}

func New(store Store, reg prometheus.Registerer) *Service {
	return NewWithClock(store, time.Now, reg)
}

func NewWithClock(store Store, now func() time.Time, reg prometheus.Registerer) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store: store,
		now:   now,
		uploads: internalmetrics.Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "desertport_media_uploads_total",
			Help: "Media uploads by kind and outcome.",
		}, []string{"kind", "outcome"})),
		bytes: internalmetrics.Register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "desertport_media_uploaded_bytes_total",
			Help: "Bytes written to media storage.",
		})),
	}
}

func (s *Service) Upload(ctx context.Context, params UploadParams) (UploadResult, error) {
	if strings.TrimSpace(params.AdminID) == "" {
		return UploadResult{}, newError(ErrorCodeForbidden, "admin access required", nil)
	}
	if params.Body == nil {
		return UploadResult{}, newError(ErrorCodeValidation, "file is required", nil)
	}

	contentType, kind, err := normalizeContentType(params.ContentType, params.Filename)
	if err != nil {
		return UploadResult{}, err
	}

	if params.Size <= 0 {
		return UploadResult{}, newError(ErrorCodeValidation, "file is empty", nil)
	}
	if params.Size > MaxUploadSize {
		return UploadResult{}, newError(ErrorCodeTooLarge, fmt.Sprintf("file exceeds %d MiB", MaxUploadSize>>20), nil)
	}

	key := s.objectKey(params.Filename)
	body := &progressReader{r: io.LimitReader(params.Body, params.Size), onRead: params.Progress}

	url, err := s.store.PutObject(ctx, key, contentType, params.Size, body)
	if err != nil {
		s.uploads.WithLabelValues(kind, "error").Inc()
		return UploadResult{}, newError(ErrorCodeInternal, "failed to store file", err)
	}
	if body.read != params.Size {
		s.uploads.WithLabelValues(kind, "error").Inc()
		return UploadResult{}, newError(ErrorCodeValidation, "file is shorter than its declared size", nil)
	}

	s.uploads.WithLabelValues(kind, "ok").Inc()
	s.bytes.Add(float64(params.Size))

	return UploadResult{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Kind:        kind,
		Size:        params.Size,
	}, nil
}

func (s *Service) objectKey(filename string) string {
	now := s.now().UTC()
	return fmt.Sprintf("media/%04d/%02d/%s-%s", now.Year(), int(now.Month()), uuid.NewString(), sanitizeName(filename))
}

func normalizeContentType(contentType, filename string) (string, string, error) {
	mediaType := ""
	if contentType != "" {
		parsed, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", "", newError(ErrorCodeValidation, "invalid content type", err)
		}
		mediaType = parsed
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		ext := strings.ToLower(path.Ext(filename))
		if byExt, ok := videoExtensions[ext]; ok {
			mediaType = byExt
		} else if byExt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil {
			mediaType = byExt
		}
	}

	kind, ok := allowedTypes[mediaType]
	if !ok {
		return "", "", newError(ErrorCodeUnsupported, "only images and video can be uploaded", nil)
	}
	return mediaType, kind, nil
}

// sanitizeName keeps a lowercase, URL-safe version of the base file name.
func sanitizeName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	name := strings.Trim(b.String(), "-.")
	if len(name) > maxNameLength {
		name = name[len(name)-maxNameLength:]
	}
	if name == "" || name == "." {
		return "upload"
	}
	return name
}

type progressReader struct {
	r      io.Reader
	read   int64
	onRead ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		if p.onRead != nil {
			p.onRead(p.read)
		}
	}
	return n, err
}
