package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/dto"
	authsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/auth"
)

type AuthEndpoints interface {
	Register(http.ResponseWriter, *http.Request) error
	Login(http.ResponseWriter, *http.Request) error
	Refresh(http.ResponseWriter, *http.Request) error
	Logout(http.ResponseWriter, *http.Request) error
	Me(http.ResponseWriter, *http.Request) error
}

type authEndpoints struct {
	service *authsvc.Service
}

func NewAuthEndpoints(service *authsvc.Service) AuthEndpoints {
	return &authEndpoints{service: service}
}

func (h *authEndpoints) Register(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRegister,
	})
}

func (h *authEndpoints) Login(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogin,
	})
}

func (h *authEndpoints) Refresh(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRefresh,
	})
}

func (h *authEndpoints) Logout(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogout,
	})
}

func (h *authEndpoints) Me(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleMe,
	})
}

func (h *authEndpoints) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req, "register request", false); err != nil {
		return err
	}

	result, err := h.service.Register(r.Context(), authsvc.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toAuthResponse(result))
}

func (h *authEndpoints) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req, "login request", false); err != nil {
		return err
	}

	result, err := h.service.Login(r.Context(), authsvc.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *authEndpoints) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req, "refresh request", false); err != nil {
		return err
	}

	access, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.RefreshResponse{AccessToken: access})
}

func (h *authEndpoints) handleLogout(w http.ResponseWriter, r *http.Request) error {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req, "logout request", false); err != nil {
		return err
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		return h.serviceError(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *authEndpoints) handleMe(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	profile, err := h.service.Me(r.Context(), authsvc.Identity{
		UserID: claims.ID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.MeResponse{User: dto.ToUserResponse(profile.User)})
}

func (h *authEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *authsvc.Error
	if !errors.As(err, &svcErr) {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("auth service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case authsvc.ErrorCodeValidation:
		return errorWithStatus(http.StatusBadRequest, svcErr.Message, errorLog)
	case authsvc.ErrorCodeUnauthorized:
		return errorWithStatus(http.StatusUnauthorized, svcErr.Message, errorLog)
	case authsvc.ErrorCodeNotFound:
		return errorWithStatus(http.StatusNotFound, svcErr.Message, errorLog)
	case authsvc.ErrorCodeConflict:
		return errorWithStatus(http.StatusConflict, svcErr.Message, errorLog)
	default:
		return errorWithStatus(http.StatusInternalServerError, svcErr.Message, errorLog)
	}
}

func toAuthResponse(result authsvc.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         dto.ToUserResponse(result.User),
	}
}
