package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/middleware"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/dto"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
	chatsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"

	"github.com/go-chi/chi/v5"
)

// SessionTokenHeader carries the token StartSession hands to the visitor.
const SessionTokenHeader = "X-Session-Token"

type ChatEndpoints interface {
	StartSession(http.ResponseWriter, *http.Request) error
	SessionMessages(http.ResponseWriter, *http.Request) error
	RequestAgent(http.ResponseWriter, *http.Request) error
	MarkRead(http.ResponseWriter, *http.Request) error
	Close(http.ResponseWriter, *http.Request) error

	AgentSessions(http.ResponseWriter, *http.Request) error
	AgentMessages(http.ResponseWriter, *http.Request) error
	AgentMarkRead(http.ResponseWriter, *http.Request) error
	AgentClose(http.ResponseWriter, *http.Request) error
}

type chatEndpoints struct {
	service *chatsvc.Service
}

func NewChatEndpoints(service *chatsvc.Service) ChatEndpoints {
	return &chatEndpoints{service: service}
}

func (h *chatEndpoints) StartSession(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleStartSession,
	})
}

func (h *chatEndpoints) SessionMessages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListSessionMessages,
		http.MethodPost: h.handlePostUserMessage,
	})
}

func (h *chatEndpoints) RequestAgent(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRequestAgent,
	})
}

func (h *chatEndpoints) MarkRead(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleMarkReadByUser,
	})
}

func (h *chatEndpoints) Close(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCloseByUser,
	})
}

func (h *chatEndpoints) AgentSessions(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListSessions,
	})
}

func (h *chatEndpoints) AgentMessages(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListMessages,
		http.MethodPost: h.handlePostAgentMessage,
	})
}

func (h *chatEndpoints) AgentMarkRead(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleMarkReadByAgent,
	})
}

func (h *chatEndpoints) AgentClose(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCloseByAgent,
	})
}

func (h *chatEndpoints) handleStartSession(w http.ResponseWriter, r *http.Request) error {
	var req dto.StartChatRequest
	if err := decodeJSON(r, &req, "start chat request", false); err != nil {
		return err
	}

	params := chatsvc.StartSessionParams{
		UserName: req.Name,
		Message:  req.Message,
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		params.UserID = claims.ID
		if strings.TrimSpace(params.UserName) == "" {
			params.UserName = claims.Name
		}
	}

	result, err := h.service.StartSession(r.Context(), params)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.StartChatResponse{
		Session:      dto.ToChatSession(result.Session),
		SessionToken: result.Token,
		Messages:     dto.ToChatMessages(result.Messages),
	})
}

func (h *chatEndpoints) handleListSessionMessages(w http.ResponseWriter, r *http.Request) error {
	token, _, err := h.authorizeVisitor(r)
	if err != nil {
		return err
	}

	result, err := h.service.ListSessionMessages(r.Context(), token)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toListMessagesResponse(result))
}

func (h *chatEndpoints) handlePostUserMessage(w http.ResponseWriter, r *http.Request) error {
	token, _, err := h.authorizeVisitor(r)
	if err != nil {
		return err
	}

	var req dto.PostChatMessageRequest
	if err := decodeJSON(r, &req, "chat message", false); err != nil {
		return err
	}

	result, err := h.service.PostUserMessage(r.Context(), token, req.Message)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toSessionResponse(result))
}

func (h *chatEndpoints) handleRequestAgent(w http.ResponseWriter, r *http.Request) error {
	if _, _, err := h.authorizeVisitor(r); err != nil {
		return err
	}

	var req dto.RequestAgentRequest
	if err := decodeJSON(r, &req, "agent request", true); err != nil {
		return err
	}

	result, err := h.service.RequestAgent(r.Context(), chi.URLParam(r, "sessionID"), req.Reason)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toSessionResponse(result))
}

func (h *chatEndpoints) handleMarkReadByUser(w http.ResponseWriter, r *http.Request) error {
	token, _, err := h.authorizeVisitor(r)
	if err != nil {
		return err
	}

	session, err := h.service.MarkReadByUser(r.Context(), token)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.ChatSessionResponse{Session: dto.ToChatSession(session)})
}

func (h *chatEndpoints) handleCloseByUser(w http.ResponseWriter, r *http.Request) error {
	_, access, err := h.authorizeVisitor(r)
	if err != nil {
		return err
	}

	result, err := h.service.CloseSession(r.Context(), access.SessionID, access.UserID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toCloseResponse(result))
}

func (h *chatEndpoints) handleListSessions(w http.ResponseWriter, r *http.Request) error {
	var statuses []model.ChatStatus
	for _, raw := range r.URL.Query()["status"] {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				statuses = append(statuses, model.ChatStatus(status))
			}
		}
	}

	result, err := h.service.ListSessions(r.Context(), statuses)
	if err != nil {
		return h.serviceError(err)
	}

	sessions := make([]dto.ChatSession, len(result.Sessions))
	for i, session := range result.Sessions {
		sessions[i] = dto.ToChatSession(session)
	}
	return WriteJSON(w, http.StatusOK, dto.ListChatSessionsResponse{Sessions: sessions})
}

func (h *chatEndpoints) handleListMessages(w http.ResponseWriter, r *http.Request) error {
	result, err := h.service.ListMessages(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toListMessagesResponse(result))
}

func (h *chatEndpoints) handlePostAgentMessage(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	var req dto.PostChatMessageRequest
	if err := decodeJSON(r, &req, "agent message", false); err != nil {
		return err
	}

	agentName := claims.Name
	if strings.TrimSpace(agentName) == "" {
		agentName = claims.Email
	}

	result, err := h.service.PostAgentMessage(r.Context(), chatsvc.AgentMessageParams{
		SessionID: chi.URLParam(r, "sessionID"),
		AgentID:   claims.ID,
		AgentName: agentName,
		Message:   req.Message,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toSessionResponse(result))
}

func (h *chatEndpoints) handleMarkReadByAgent(w http.ResponseWriter, r *http.Request) error {
	session, err := h.service.MarkReadByAgent(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.ChatSessionResponse{Session: dto.ToChatSession(session)})
}

func (h *chatEndpoints) handleCloseByAgent(w http.ResponseWriter, r *http.Request) error {
	claims, err := requireClaims(r)
	if err != nil {
		return err
	}

	result, err := h.service.CloseSession(r.Context(), chi.URLParam(r, "sessionID"), claims.ID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toCloseResponse(result))
}

// authorizeVisitor checks the session token against the session in the
// path and returns the token.
func (h *chatEndpoints) authorizeVisitor(r *http.Request) (string, chatsvc.SessionAccess, error) {
	token := strings.TrimSpace(r.Header.Get(SessionTokenHeader))
	access, err := h.service.AuthorizeSession(token, chi.URLParam(r, "sessionID"))
	if err != nil {
		return "", chatsvc.SessionAccess{}, h.serviceError(err)
	}
	return token, access, nil
}

func (h *chatEndpoints) serviceError(err error) error {
	return chatServiceError(err)
}

func chatServiceError(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *chatsvc.Error
	if !errors.As(err, &svcErr) {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("chat service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case chatsvc.ErrorCodeValidation:
		return errorWithStatus(http.StatusBadRequest, svcErr.Message, errorLog)
	case chatsvc.ErrorCodeUnauthorized:
		return errorWithStatus(http.StatusUnauthorized, svcErr.Message, errorLog)
	case chatsvc.ErrorCodeForbidden:
		return errorWithStatus(http.StatusForbidden, svcErr.Message, errorLog)
	case chatsvc.ErrorCodeNotFound:
		return errorWithStatus(http.StatusNotFound, svcErr.Message, errorLog)
	case chatsvc.ErrorCodeConflict:
		return errorWithStatus(http.StatusConflict, svcErr.Message, errorLog)
	default:
		return errorWithStatus(http.StatusInternalServerError, svcErr.Message, errorLog)
	}
}

func toSessionResponse(result chatsvc.SessionResult) dto.ChatSessionResponse {
	return dto.ChatSessionResponse{
		Session:  dto.ToChatSession(result.Session),
		Messages: dto.ToChatMessages(result.Messages),
	}
}

func toListMessagesResponse(result chatsvc.ListMessagesResult) dto.ListChatMessagesResponse {
	return dto.ListChatMessagesResponse{
		Session:  dto.ToChatSession(result.Session),
		Messages: dto.ToChatMessages(result.Messages),
	}
}

func toCloseResponse(result chatsvc.CloseResult) dto.CloseChatResponse {
	resp := dto.CloseChatResponse{Closed: result.Closed}
	if result.Session.SessionID != "" {
		session := dto.ToChatSession(result.Session)
		resp.Session = &session
	}
	return resp
}
