package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/dto"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
	sitesvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/site"

	"github.com/go-chi/chi/v5"
)

type SiteEndpoints interface {
	Config(http.ResponseWriter, *http.Request) error
	SectionStyle(http.ResponseWriter, *http.Request) error

	AdminConfig(http.ResponseWriter, *http.Request) error
	AdminPath(http.ResponseWriter, *http.Request) error
}

type siteEndpoints struct {
	service *sitesvc.Service
}

func NewSiteEndpoints(service *sitesvc.Service) SiteEndpoints {
	return &siteEndpoints{service: service}
}

func (h *siteEndpoints) Config(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleGet,
	})
}

func (h *siteEndpoints) SectionStyle(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleSectionStyle,
	})
}

func (h *siteEndpoints) AdminConfig(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:   h.handleGet,
		http.MethodPatch: h.handlePatch,
	})
}

func (h *siteEndpoints) AdminPath(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPut: h.handleSetPath,
	})
}

func (h *siteEndpoints) handleGet(w http.ResponseWriter, r *http.Request) error {
	item, err := h.service.Get(r.Context())
	if err != nil {
		return h.serviceError(err)
	}
	return writeSiteConfig(w, http.StatusOK, item)
}

func (h *siteEndpoints) handleSectionStyle(w http.ResponseWriter, r *http.Request) error {
	style, err := h.service.SectionStyle(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		return h.serviceError(err)
	}

	resp := dto.SectionStyleResponse{
		Section:    style.Section,
		Version:    style.Version,
		Tags:       style.Directives.Tags,
		Style:      style.Directives.Style,
		Variants:   style.Variants,
		Typography: style.Typography,
	}
	if !style.Hover.IsEmpty() {
		hover := style.Hover
		resp.Hover = &hover
	}
	return WriteJSON(w, http.StatusOK, resp)
}

// handlePatch applies the body as a JSON merge patch. If-Match, when sent,
// must carry the version the client last read.
func (h *siteEndpoints) handlePatch(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	expected, err := ifMatchVersion(r)
	if err != nil {
		return err
	}

	var patch map[string]interface{}
	if err := decodeJSON(r, &patch, "site patch", false); err != nil {
		return err
	}

	item, err := h.service.MergePatch(r.Context(), claims.ID, patch, expected)
	if err != nil {
		return h.serviceError(err)
	}
	return writeSiteConfig(w, http.StatusOK, item)
}

func (h *siteEndpoints) handleSetPath(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	var req dto.SetSitePathRequest
	if err := decodeJSON(r, &req, "site path request", false); err != nil {
		return err
	}

	expected := req.ExpectedVersion
	if expected == nil {
		if expected, err = ifMatchVersion(r); err != nil {
			return err
		}
	}

	item, err := h.service.SetPath(r.Context(), claims.ID, req.Path, req.Value, expected)
	if err != nil {
		return h.serviceError(err)
	}
	return writeSiteConfig(w, http.StatusOK, item)
}

func writeSiteConfig(w http.ResponseWriter, status int, item model.SiteConfigItem) error {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(item.Version, 10)))
	return WriteJSON(w, status, dto.ToSiteConfigResponse(item))
}

// ifMatchVersion reads the expected version from If-Match. A missing header
// or "*" means any version.
func ifMatchVersion(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)

	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 0 {
		return nil, &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "If-Match must be a configuration version",
			ErrorLog:   fmt.Errorf("parse If-Match %q: %v", raw, err),
		}
	}
	return &version, nil
}

func (h *siteEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *sitesvc.Error
	if !errors.As(err, &svcErr) {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("site service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case sitesvc.ErrorCodeValidation:
		return errorWithStatus(http.StatusBadRequest, svcErr.Message, errorLog)
	case sitesvc.ErrorCodeForbidden:
		return errorWithStatus(http.StatusForbidden, svcErr.Message, errorLog)
	case sitesvc.ErrorCodeNotFound:
		return errorWithStatus(http.StatusNotFound, svcErr.Message, errorLog)
	case sitesvc.ErrorCodeConflict:
		return errorWithStatus(http.StatusConflict, svcErr.Message, errorLog)
	default:
		return errorWithStatus(http.StatusInternalServerError, svcErr.Message, errorLog)
	}
}
