package dto

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

func ToChatSession(item model.ChatSessionItem) ChatSession {
	return ChatSession{
		SessionID:     item.SessionID,
		Status:        string(item.Status),
		UserID:        item.UserID,
		UserName:      item.UserName,
		AgentID:       item.AgentID,
		AgentName:     item.AgentName,
		UnreadByUser:  item.UnreadByUser,
		UnreadByAgent: item.UnreadByAgent,
		HandoffReason: item.HandoffReason,
		ClosedBy:      item.ClosedBy,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
		LastMessageAt: item.LastMessageAt,
	}
}

func FromChatSession(s ChatSession) model.ChatSessionItem {
	return model.ChatSessionItem{
		SessionID:     s.SessionID,
		Status:        model.ChatStatus(s.Status),
		UserID:        s.UserID,
		UserName:      s.UserName,
		AgentID:       s.AgentID,
		AgentName:     s.AgentName,
		UnreadByUser:  s.UnreadByUser,
		UnreadByAgent: s.UnreadByAgent,
		HandoffReason: s.HandoffReason,
		ClosedBy:      s.ClosedBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		LastMessageAt: s.LastMessageAt,
	}
}

func ToChatMessage(item model.ChatMessageItem) ChatMessage {
	return ChatMessage{
		MessageID:  item.MessageID,
		SessionID:  item.SessionID,
		Role:       string(item.Role),
		Content:    item.Content,
		SenderName: item.SenderName,
		Timestamp:  item.Timestamp,
	}
}

func FromChatMessage(m ChatMessage) model.ChatMessageItem {
	return model.ChatMessageItem{
		PK:         model.CompositePK(m.SessionID, m.MessageID),
		MessageID:  m.MessageID,
		SessionID:  m.SessionID,
		Role:       model.ChatRole(m.Role),
		Content:    m.Content,
		SenderName: m.SenderName,
		Timestamp:  m.Timestamp,
	}
}

func ToChatMessages(items []model.ChatMessageItem) []ChatMessage {
	out := make([]ChatMessage, len(items))
	for i, item := range items {
		out[i] = ToChatMessage(item)
	}
	return out
}

func ToUserResponse(item model.UserItem) UserResponse {
	return UserResponse{
		UserID:    item.UserID,
		Email:     item.Email,
		Name:      item.Name,
		Role:      item.Role,
		CreatedAt: item.CreatedAt,
	}
}

func ToFavoriteResponse(item model.FavoriteItem) FavoriteResponse {
	return FavoriteResponse{
		VehicleID: item.VehicleID,
		Title:     item.Title,
		ImageURL:  item.ImageURL,
		Price:     item.Price,
		CreatedAt: item.CreatedAt,
	}
}

func ToSiteConfigResponse(item model.SiteConfigItem) SiteConfigResponse {
	sections := item.Sections
	if sections == nil {
		sections = map[string]interface{}{}
	}
	return SiteConfigResponse{
		Version:   item.Version,
		Sections:  sections,
		UpdatedAt: item.UpdatedAt,
		UpdatedBy: item.UpdatedBy,
	}
}
