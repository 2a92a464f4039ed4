package chat

import (
	"context"
	"sync"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]model.ChatSessionItem
	messages map[string][]model.ChatMessageItem
	failGet  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		sessions: make(map[string]model.ChatSessionItem),
		messages: make(map[string][]model.ChatMessageItem),
	}
}

func (m *memoryRepository) CreateSession(ctx context.Context, session model.ChatSessionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.SessionID]; ok {
		return ErrConflict
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *memoryRepository) GetSession(ctx context.Context, sessionID string) (model.ChatSessionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return model.ChatSessionItem{}, m.failGet
	}
	session, ok := m.sessions[sessionID]
	if !ok {
		return model.ChatSessionItem{}, ErrNotFound
	}
	return session, nil
}

func (m *memoryRepository) UpdateSession(ctx context.Context, sessionID string, update SessionUpdate) (model.ChatSessionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return model.ChatSessionItem{}, ErrNotFound
	}
	if update.RequireNoAgent && session.AgentID != "" {
		return model.ChatSessionItem{}, ErrConflict
	}
	if len(update.AllowedFrom) > 0 {
		allowed := false
		for _, status := range update.AllowedFrom {
			if session.Status == status {
				allowed = true
			}
		}
		if !allowed {
			return model.ChatSessionItem{}, ErrConflict
		}
	}

	session.UpdatedAt = update.UpdatedAt
	if update.LastMessageAt != "" {
		session.LastMessageAt = update.LastMessageAt
	}
	if update.Status != nil {
		session.Status = *update.Status
	}
	if update.AgentID != nil {
		session.AgentID = *update.AgentID
	}
	if update.AgentName != nil {
		session.AgentName = *update.AgentName
	}
	if update.HandoffReason != nil {
		session.HandoffReason = *update.HandoffReason
	}
	if update.ClosedBy != nil {
		session.ClosedBy = *update.ClosedBy
	}
	if update.ResetUnreadByUser {
		session.UnreadByUser = 0
	} else {
		session.UnreadByUser += update.UnreadByUserDelta
	}
	if update.ResetUnreadByAgent {
		session.UnreadByAgent = 0
	} else {
		session.UnreadByAgent += update.UnreadByAgentDelta
	}

	m.sessions[sessionID] = session
	return session, nil
}

func (m *memoryRepository) ListSessionsByStatus(ctx context.Context, statuses []model.ChatStatus) ([]model.ChatSessionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.ChatSessionItem, 0)
	for _, session := range m.sessions {
		for _, status := range statuses {
			if session.Status == status {
				items = append(items, session)
				break
			}
		}
	}
	return items, nil
}

func (m *memoryRepository) CreateMessage(ctx context.Context, message model.ChatMessageItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[message.SessionID] = append(m.messages[message.SessionID], message)
	return nil
}

func (m *memoryRepository) ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessageItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.ChatMessageItem, len(m.messages[sessionID]))
	copy(items, m.messages[sessionID])
	return items, nil
}

func (m *memoryRepository) messageCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages[sessionID])
}

func (m *memoryRepository) session(sessionID string) model.ChatSessionItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID]
}
