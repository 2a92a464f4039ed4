package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/dto"
	favoritessvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/favorites"

	"github.com/go-chi/chi/v5"
)

type FavoritesEndpoints interface {
	Favorites(http.ResponseWriter, *http.Request) error
	Favorite(http.ResponseWriter, *http.Request) error
}

type favoritesEndpoints struct {
	service *favoritessvc.Service
}

func NewFavoritesEndpoints(service *favoritessvc.Service) FavoritesEndpoints {
	return &favoritesEndpoints{service: service}
}

func (h *favoritesEndpoints) Favorites(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleList,
		http.MethodPost: h.handleAdd,
	})
}

func (h *favoritesEndpoints) Favorite(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodDelete: h.handleRemove,
	})
}

func (h *favoritesEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	items, err := h.service.List(r.Context(), claims.ID)
	if err != nil {
		return h.serviceError(err)
	}

	resp := dto.ListFavoritesResponse{Favorites: make([]dto.FavoriteResponse, len(items))}
	for i, item := range items {
		resp.Favorites[i] = dto.ToFavoriteResponse(item)
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *favoritesEndpoints) handleAdd(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	var req dto.AddFavoriteRequest
	if err := decodeJSON(r, &req, "add favorite request", false); err != nil {
		return err
	}

	item, err := h.service.Add(r.Context(), claims.ID, favoritessvc.Vehicle{
		VehicleID: req.VehicleID,
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		Price:     req.Price,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.ToFavoriteResponse(item))
}

func (h *favoritesEndpoints) handleRemove(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	if err := h.service.Remove(r.Context(), claims.ID, chi.URLParam(r, "vehicleID")); err != nil {
		return h.serviceError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *favoritesEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *favoritessvc.Error
	if !errors.As(err, &svcErr) {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("favorites service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case favoritessvc.ErrorCodeValidation:
		return errorWithStatus(http.StatusBadRequest, svcErr.Message, errorLog)
	case favoritessvc.ErrorCodeUnauthorized:
		return errorWithStatus(http.StatusUnauthorized, svcErr.Message, errorLog)
	case favoritessvc.ErrorCodeNotFound:
		return errorWithStatus(http.StatusNotFound, svcErr.Message, errorLog)
	default:
		return errorWithStatus(http.StatusInternalServerError, svcErr.Message, errorLog)
	}
}
