package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// timestampLayout is RFC 3339 with a fixed microsecond fraction so stored
// timestamps also sort correctly as strings.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

const (
	SystemSenderName     = "DesertPort Autos"
	AgentPendingMessage  = "An agent will join shortly"
	defaultHandoffReason = "requested"
)

// Responder produces the automated side of a conversation.
type Responder interface {
	Reply(ctx context.Context, history []model.ChatMessageItem) (Reply, error)
}

// Reply is one automated turn. NeedsAgent asks for a human hand-off, after
// Content (when non-empty) has been delivered.
type Reply struct {
	Content    string
	NeedsAgent bool
	Reason     string
}

type StartSessionParams struct {
	UserID   string
	UserName string
	Message  string
}

type AgentMessageParams struct {
	SessionID string
	AgentID   string
	AgentName string
	Message   string
}

type StartSessionResult struct {
	Session  model.ChatSessionItem
	Token    string
	Messages []model.ChatMessageItem
}

// SessionResult is the session after an operation together with the
// messages that operation appended, oldest first.
type SessionResult struct {
	Session  model.ChatSessionItem
	Messages []model.ChatMessageItem
}

type CloseResult struct {
	Session model.ChatSessionItem
	// Closed is false when the call was a no-op: the session was missing or
	// already resolved.
	Closed bool
}

type ListSessionsResult struct {
	Sessions []model.ChatSessionItem
}

type ListMessagesResult struct {
	Session  model.ChatSessionItem
	Messages []model.ChatMessageItem
}

type Service struct {
	repo        Repository
	now         func() time.Time
	publisher   EventPublisher
	responder   Responder
	tokenSecret []byte
	tokenTTL    time.Duration
	metrics     *metrics

	clockMu sync.Mutex
	last    time.Time
}

type Option func(*Service)

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithResponder(r Responder) Option {
	return func(s *Service) { s.responder = r }
}

func WithTokenSecret(secret []byte) Option {
	return func(s *Service) {
		if len(secret) == 0 {
			return
		}
		s.tokenSecret = make([]byte, len(secret))
		copy(s.tokenSecret, secret)
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Service) { s.metrics = newMetrics(reg) }
}

func New(db *database.Database, opts ...Option) *Service {
	opts = append([]Option{WithTokenSecret([]byte(env.Get(env.SessionTokenSecret)))}, opts...)
	return NewWithRepository(NewDynamoRepository(db), time.Now, opts...)
}

func NewWithRepository(repo Repository, now func() time.Time, opts ...Option) *Service {
	if now == nil {
		now = time.Now
	}
	s := &Service{
		repo:     repo,
		now:      now,
		tokenTTL: defaultTokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.DefaultRegisterer)
	}
	return s
}

func (s *Service) StartSession(ctx context.Context, params StartSessionParams) (StartSessionResult, error) {
	content := strings.TrimSpace(params.Message)
	if content == "" {
		return StartSessionResult{}, newError(ErrorCodeValidation, "message is required", nil)
	}

	ts := s.stamp()
	session := model.ChatSessionItem{
		SessionID:     uuid.NewString(),
		Status:        model.ChatStatusAI,
		UserID:        strings.TrimSpace(params.UserID),
		UserName:      strings.TrimSpace(params.UserName),
		UnreadByAgent: 1,
		CreatedAt:     ts,
		UpdatedAt:     ts,
		LastMessageAt: ts,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return StartSessionResult{}, newError(ErrorCodeInternal, "failed to create session", err)
	}

	message := newMessage(session.SessionID, model.ChatRoleUser, content, session.UserName, ts)
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return StartSessionResult{}, newError(ErrorCodeInternal, "failed to store message", err)
	}

	token, err := s.issueToken(session)
	if err != nil {
		return StartSessionResult{}, newError(ErrorCodeInternal, "failed to issue session token", err)
	}

	s.metrics.sessionsStarted.Inc()
	s.publish(ctx, SessionEvent{Type: EventSessionCreated, Session: session, Message: &message})

	turn := s.respond(ctx, session)

	return StartSessionResult{
		Session:  turn.Session,
		Token:    token,
		Messages: append([]model.ChatMessageItem{message}, turn.Messages...),
	}, nil
}

func (s *Service) PostUserMessage(ctx context.Context, token, message string) (SessionResult, error) {
	content := strings.TrimSpace(message)
	if content == "" {
		return SessionResult{}, newError(ErrorCodeValidation, "message is required", nil)
	}

	access, err := s.ValidateSessionAccess(token)
	if err != nil {
		return SessionResult{}, err
	}

	session, err := s.getSession(ctx, access.SessionID)
	if err != nil {
		return SessionResult{}, err
	}
	if session.Status == model.ChatStatusResolved {
		return SessionResult{}, newError(ErrorCodeConflict, "session is resolved", nil)
	}

	ts := s.stamp()
	updated, err := s.repo.UpdateSession(ctx, session.SessionID, SessionUpdate{
		UnreadByAgentDelta: 1,
		UpdatedAt:          ts,
		LastMessageAt:      ts,
		AllowedFrom:        model.ActiveChatStatuses,
	})
	if err != nil {
		return SessionResult{}, s.updateError(err)
	}

	msg := newMessage(session.SessionID, model.ChatRoleUser, content, session.UserName, ts)
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return SessionResult{}, newError(ErrorCodeInternal, "failed to store message", err)
	}
	s.publish(ctx, SessionEvent{Type: EventMessageAppended, Session: updated, Message: &msg})

	result := SessionResult{Session: updated, Messages: []model.ChatMessageItem{msg}}
	if updated.Status == model.ChatStatusAI {
		turn := s.respond(ctx, updated)
		result.Session = turn.Session
		result.Messages = append(result.Messages, turn.Messages...)
	}

	return result, nil
}

// RequestAgent moves a session from automated handling to the agent queue.
// Sessions already waiting for or talking to an agent are returned as-is.
func (s *Service) RequestAgent(ctx context.Context, sessionID, reason string) (SessionResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return SessionResult{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return SessionResult{}, err
	}

	switch session.Status {
	case model.ChatStatusResolved:
		return SessionResult{}, newError(ErrorCodeConflict, "session is resolved", nil)
	case model.ChatStatusPendingAgent, model.ChatStatusWithAgent:
		return SessionResult{Session: session}, nil
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultHandoffReason
	}

	ts := s.stamp()
	pending := model.ChatStatusPendingAgent
	updated, err := s.repo.UpdateSession(ctx, sessionID, SessionUpdate{
		Status:            &pending,
		HandoffReason:     &reason,
		UnreadByUserDelta: 1,
		UpdatedAt:         ts,
		LastMessageAt:     ts,
		AllowedFrom:       []model.ChatStatus{model.ChatStatusAI},
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			current, getErr := s.getSession(ctx, sessionID)
			if getErr != nil {
				return SessionResult{}, getErr
			}
			if current.Status == model.ChatStatusResolved {
				return SessionResult{}, newError(ErrorCodeConflict, "session is resolved", err)
			}
			return SessionResult{Session: current}, nil
		}
		return SessionResult{}, s.updateError(err)
	}

	msg := newMessage(sessionID, model.ChatRoleSystem, AgentPendingMessage, SystemSenderName, ts)
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return SessionResult{}, newError(ErrorCodeInternal, "failed to store message", err)
	}

	s.metrics.handoffs.WithLabelValues(string(model.ChatStatusPendingAgent)).Inc()
	s.publish(ctx, SessionEvent{
		Type:           EventStatusChanged,
		Session:        updated,
		Message:        &msg,
		PreviousStatus: session.Status,
	})

	return SessionResult{Session: updated, Messages: []model.ChatMessageItem{msg}}, nil
}

// PostAgentMessage appends an agent message. The first agent message on a
// session also joins the agent: the session moves to with_agent and a system
// announcement precedes the message. Either way the user gains exactly one
// unread message and the agent's unread count resets.
func (s *Service) PostAgentMessage(ctx context.Context, params AgentMessageParams) (SessionResult, error) {
	sessionID := strings.TrimSpace(params.SessionID)
	agentID := strings.TrimSpace(params.AgentID)
	agentName := strings.TrimSpace(params.AgentName)
	content := strings.TrimSpace(params.Message)

	switch {
	case sessionID == "":
		return SessionResult{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	case agentID == "":
		return SessionResult{}, newError(ErrorCodeValidation, "agentId is required", nil)
	case agentName == "":
		return SessionResult{}, newError(ErrorCodeValidation, "agentName is required", nil)
	case content == "":
		return SessionResult{}, newError(ErrorCodeValidation, "message is required", nil)
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return SessionResult{}, err
	}
	if session.Status == model.ChatStatusResolved {
		return SessionResult{}, newError(ErrorCodeConflict, "session is resolved", nil)
	}

	joinTs := s.stamp()
	messageTs := joinTs
	if session.AgentID == "" {
		messageTs = s.stamp()
	}

	base := SessionUpdate{
		UnreadByUserDelta:  1,
		ResetUnreadByAgent: true,
		UpdatedAt:          messageTs,
		LastMessageAt:      messageTs,
		AllowedFrom:        model.ActiveChatStatuses,
	}

	var (
		updated model.ChatSessionItem
		joined  bool
	)
	if session.AgentID == "" {
		withAgent := model.ChatStatusWithAgent
		join := base
		join.Status = &withAgent
		join.AgentID = &agentID
		join.AgentName = &agentName
		join.RequireNoAgent = true

		updated, err = s.repo.UpdateSession(ctx, sessionID, join)
		switch {
		case err == nil:
			joined = true
		case errors.Is(err, ErrConflict):
			// Another agent joined first or the session closed; retry as a
			// plain message and let the status precondition decide.
		default:
			return SessionResult{}, s.updateError(err)
		}
	}
	if !joined {
		updated, err = s.repo.UpdateSession(ctx, sessionID, base)
		if err != nil {
			return SessionResult{}, s.updateError(err)
		}
	}

	messages := make([]model.ChatMessageItem, 0, 2)
	if joined {
		announcement := newMessage(sessionID, model.ChatRoleSystem, fmt.Sprintf("%s has joined the conversation", agentName), SystemSenderName, joinTs)
		if err := s.repo.CreateMessage(ctx, announcement); err != nil {
			return SessionResult{}, newError(ErrorCodeInternal, "failed to store message", err)
		}
		messages = append(messages, announcement)

		s.metrics.handoffs.WithLabelValues(string(model.ChatStatusWithAgent)).Inc()
		s.publish(ctx, SessionEvent{
			Type:           EventStatusChanged,
			Session:        updated,
			Message:        &announcement,
			PreviousStatus: session.Status,
		})
	}

	msg := newMessage(sessionID, model.ChatRoleAgent, content, agentName, messageTs)
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return SessionResult{}, newError(ErrorCodeInternal, "failed to store message", err)
	}
	messages = append(messages, msg)
	s.publish(ctx, SessionEvent{Type: EventMessageAppended, Session: updated, Message: &msg})

	return SessionResult{Session: updated, Messages: messages}, nil
}

// CloseSession resolves a session. Closing a missing or already resolved
// session succeeds without changing anything.
func (s *Service) CloseSession(ctx context.Context, sessionID, userID string) (CloseResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CloseResult{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return CloseResult{}, nil
		}
		return CloseResult{}, newError(ErrorCodeInternal, "failed to fetch session", err)
	}
	if session.Status == model.ChatStatusResolved {
		return CloseResult{Session: session}, nil
	}

	resolved := model.ChatStatusResolved
	update := SessionUpdate{
		Status:      &resolved,
		UpdatedAt:   s.stamp(),
		AllowedFrom: model.ActiveChatStatuses,
	}
	if closedBy := strings.TrimSpace(userID); closedBy != "" {
		update.ClosedBy = &closedBy
	}

	updated, err := s.repo.UpdateSession(ctx, sessionID, update)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return CloseResult{Session: session}, nil
		}
		return CloseResult{}, newError(ErrorCodeInternal, "failed to close session", err)
	}

	s.metrics.resolved.Inc()
	s.publish(ctx, SessionEvent{Type: EventStatusChanged, Session: updated, PreviousStatus: session.Status})

	return CloseResult{Session: updated, Closed: true}, nil
}

func (s *Service) MarkReadByUser(ctx context.Context, token string) (model.ChatSessionItem, error) {
	access, err := s.ValidateSessionAccess(token)
	if err != nil {
		return model.ChatSessionItem{}, err
	}
	return s.markRead(ctx, access.SessionID, SessionUpdate{ResetUnreadByUser: true})
}

func (s *Service) MarkReadByAgent(ctx context.Context, sessionID string) (model.ChatSessionItem, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return model.ChatSessionItem{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}
	return s.markRead(ctx, sessionID, SessionUpdate{ResetUnreadByAgent: true})
}

func (s *Service) markRead(ctx context.Context, sessionID string, update SessionUpdate) (model.ChatSessionItem, error) {
	update.UpdatedAt = s.stamp()
	updated, err := s.repo.UpdateSession(ctx, sessionID, update)
	if err != nil {
		return model.ChatSessionItem{}, s.updateError(err)
	}
	s.publish(ctx, SessionEvent{Type: EventSessionRead, Session: updated})
	return updated, nil
}

// ListSessions returns sessions in any of statuses, most recent activity
// first. No statuses means every active status.
func (s *Service) ListSessions(ctx context.Context, statuses []model.ChatStatus) (ListSessionsResult, error) {
	if len(statuses) == 0 {
		statuses = model.ActiveChatStatuses
	}
	seen := make(map[model.ChatStatus]bool, len(statuses))
	filter := make([]model.ChatStatus, 0, len(statuses))
	for _, status := range statuses {
		if !status.Valid() {
			return ListSessionsResult{}, newError(ErrorCodeValidation, fmt.Sprintf("unknown status %q", status), nil)
		}
		if !seen[status] {
			seen[status] = true
			filter = append(filter, status)
		}
	}

	sessions, err := s.repo.ListSessionsByStatus(ctx, filter)
	if err != nil {
		return ListSessionsResult{}, newError(ErrorCodeInternal, "failed to list sessions", err)
	}
	sortSessions(sessions)

	return ListSessionsResult{Sessions: sessions}, nil
}

func (s *Service) ListMessages(ctx context.Context, sessionID string) (ListMessagesResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ListMessagesResult{}, newError(ErrorCodeValidation, "sessionId is required", nil)
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return ListMessagesResult{}, err
	}

	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return ListMessagesResult{}, newError(ErrorCodeInternal, "failed to list messages", err)
	}
	sortMessages(messages)

	return ListMessagesResult{Session: session, Messages: messages}, nil
}

func (s *Service) ListSessionMessages(ctx context.Context, token string) (ListMessagesResult, error) {
	access, err := s.ValidateSessionAccess(token)
	if err != nil {
		return ListMessagesResult{}, err
	}
	return s.ListMessages(ctx, access.SessionID)
}

func (s *Service) ValidateSessionAccess(token string) (SessionAccess, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SessionAccess{}, newError(ErrorCodeUnauthorized, "session token required", nil)
	}

	claims, err := verifySessionToken(s.tokenSecret, token, s.now().UTC())
	if err != nil {
		return SessionAccess{}, newError(ErrorCodeUnauthorized, "invalid session token", err)
	}

	return SessionAccess{SessionID: claims.SessionID, UserID: claims.UserID}, nil
}

// AuthorizeSession validates token and checks that it grants sessionID.
func (s *Service) AuthorizeSession(token, sessionID string) (SessionAccess, error) {
	access, err := s.ValidateSessionAccess(token)
	if err != nil {
		return SessionAccess{}, err
	}
	if access.SessionID != strings.TrimSpace(sessionID) {
		return SessionAccess{}, newError(ErrorCodeForbidden, "token does not match session", nil)
	}
	return access, nil
}

// respond runs one automated turn on a session still handled by the
// responder. Failures never reach the caller: a responder error hands the
// session to an agent and store errors are logged.
func (s *Service) respond(ctx context.Context, session model.ChatSessionItem) SessionResult {
	out := SessionResult{Session: session}
	if s.responder == nil || session.Status != model.ChatStatusAI {
		return out
	}

	history, err := s.repo.ListMessages(ctx, session.SessionID)
	if err != nil {
		slog.Warn("responder skipped, history unavailable", "sessionId", session.SessionID, "error", err)
		return out
	}
	sortMessages(history)

	reply, err := s.responder.Reply(ctx, history)
	if err != nil {
		slog.Warn("responder failed, handing off to an agent", "sessionId", session.SessionID, "error", err)
		reply = Reply{NeedsAgent: true, Reason: "responder unavailable"}
	}

	if content := strings.TrimSpace(reply.Content); content != "" {
		ts := s.stamp()
		updated, err := s.repo.UpdateSession(ctx, session.SessionID, SessionUpdate{
			UnreadByUserDelta: 1,
			UpdatedAt:         ts,
			LastMessageAt:     ts,
			AllowedFrom:       []model.ChatStatus{model.ChatStatusAI},
		})
		if err != nil {
			if !errors.Is(err, ErrConflict) {
				slog.Warn("failed to record responder reply", "sessionId", session.SessionID, "error", err)
			}
			return out
		}

		msg := newMessage(session.SessionID, model.ChatRoleAssistant, content, "", ts)
		if err := s.repo.CreateMessage(ctx, msg); err != nil {
			slog.Error("failed to store responder reply", "sessionId", session.SessionID, "error", err)
			out.Session = updated
			return out
		}
		s.publish(ctx, SessionEvent{Type: EventMessageAppended, Session: updated, Message: &msg})
		out.Session = updated
		out.Messages = append(out.Messages, msg)
	}

	if reply.NeedsAgent {
		handoff, err := s.RequestAgent(ctx, session.SessionID, reply.Reason)
		if err != nil {
			slog.Warn("automatic hand-off failed", "sessionId", session.SessionID, "error", err)
			return out
		}
		out.Session = handoff.Session
		out.Messages = append(out.Messages, handoff.Messages...)
	}

	return out
}

func (s *Service) getSession(ctx context.Context, sessionID string) (model.ChatSessionItem, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ChatSessionItem{}, newError(ErrorCodeNotFound, "session not found", err)
		}
		return model.ChatSessionItem{}, newError(ErrorCodeInternal, "failed to fetch session", err)
	}
	return session, nil
}

func (s *Service) updateError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return newError(ErrorCodeNotFound, "session not found", err)
	case errors.Is(err, ErrConflict):
		return newError(ErrorCodeConflict, "session is resolved", err)
	default:
		return newError(ErrorCodeInternal, "failed to update session", err)
	}
}

func (s *Service) issueToken(session model.ChatSessionItem) (string, error) {
	now := s.now().UTC()
	return signSessionToken(s.tokenSecret, sessionTokenClaims{
		SessionID: session.SessionID,
		UserID:    session.UserID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	})
}

func (s *Service) publish(ctx context.Context, event SessionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		slog.Warn("failed to publish session event",
			"type", event.Type,
			"sessionId", event.Session.SessionID,
			"error", err,
		)
	}
}

// stamp returns a write timestamp that is strictly later than every
// previous one from this service, so messages written in one operation keep
// their order even under a coarse or fixed clock.
func (s *Service) stamp() string {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()

	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t.Format(timestampLayout)
}

func newMessage(sessionID string, role model.ChatRole, content, senderName, ts string) model.ChatMessageItem {
	messageID := uuid.NewString()
	return model.ChatMessageItem{
		PK:         model.CompositePK(sessionID, messageID),
		MessageID:  messageID,
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		SenderName: senderName,
		Timestamp:  ts,
	}
}
