package endpoints

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/dto"
	mediasvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/media"
)

// multipartMemory is how much of a multipart body is held in memory before
// the rest spills to a temp file.
const multipartMemory = 8 << 20

type MediaEndpoints interface {
	Upload(http.ResponseWriter, *http.Request) error
}

type mediaEndpoints struct {
	service *mediasvc.Service
}

func NewMediaEndpoints(service *mediasvc.Service) MediaEndpoints {
	return &mediaEndpoints{service: service}
}

func (h *mediaEndpoints) Upload(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleUpload,
	})
}

func (h *mediaEndpoints) handleUpload(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, mediasvc.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &HTTPError{
				StatusCode: http.StatusRequestEntityTooLarge,
				Message:    fmt.Sprintf("file exceeds %d MiB", mediasvc.MaxUploadSize>>20),
				ErrorLog:   err,
			}
		}
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Expected a multipart form with a file field",
			ErrorLog:   fmt.Errorf("parse multipart form: %w", err),
		}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "file is required",
			ErrorLog:   fmt.Errorf("read form file: %w", err),
		}
	}
	defer file.Close()

	logger := slog.With("admin", claims.ID, "filename", header.Filename, "size", header.Size)
	result, err := h.service.Upload(r.Context(), mediasvc.UploadParams{
		AdminID:     claims.ID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Progress:    progressLogger(logger, header.Size),
	})
	if err != nil {
		return h.serviceError(err)
	}

	logger.Info("media uploaded", "key", result.Key)
	return WriteJSON(w, http.StatusCreated, dto.MediaUploadResponse{
		Key:         result.Key,
		URL:         result.URL,
		ContentType: result.ContentType,
		Kind:        result.Kind,
		Size:        result.Size,
	})
}

// progressLogger logs each quarter of an upload at debug level.
func progressLogger(logger *slog.Logger, total int64) mediasvc.ProgressFunc {
	next := int64(1)
	return func(written int64) {
		if total <= 0 {
			return
		}
		for next <= 4 && written*4 >= total*next {
			logger.Debug("media upload progress", "percent", next*25)
			next++
		}
	}
}

func (h *mediaEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *mediasvc.Error
	if !errors.As(err, &svcErr) {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("media service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case mediasvc.ErrorCodeValidation:
		return errorWithStatus(http.StatusBadRequest, svcErr.Message, errorLog)
	case mediasvc.ErrorCodeForbidden:
		return errorWithStatus(http.StatusForbidden, svcErr.Message, errorLog)
	case mediasvc.ErrorCodeTooLarge:
		return errorWithStatus(http.StatusRequestEntityTooLarge, svcErr.Message, errorLog)
	case mediasvc.ErrorCodeUnsupported:
		return errorWithStatus(http.StatusUnsupportedMediaType, svcErr.Message, errorLog)
	default:
		return errorWithStatus(http.StatusInternalServerError, svcErr.Message, errorLog)
	}
}
