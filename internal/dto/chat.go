package dto

type ChatSession struct {
	SessionID     string `json:"sessionId"`
	Status        string `json:"status"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
	AgentID       string `json:"agentId,omitempty"`
	AgentName     string `json:"agentName,omitempty"`
	UnreadByUser  int    `json:"unreadByUser"`
	UnreadByAgent int    `json:"unreadByAgent"`
	HandoffReason string `json:"handoffReason,omitempty"`
	ClosedBy      string `json:"closedBy,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
	LastMessageAt string `json:"lastMessageAt"`
}

type ChatMessage struct {
	MessageID  string `json:"messageId"`
	SessionID  string `json:"sessionId"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	SenderName string `json:"senderName,omitempty"`
	Timestamp  string `json:"timestamp"`
}

type StartChatRequest struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

type StartChatResponse struct {
	Session      ChatSession   `json:"session"`
	SessionToken string        `json:"sessionToken"`
	Messages     []ChatMessage `json:"messages"`
}

type PostChatMessageRequest struct {
	Message string `json:"message"`
}

type RequestAgentRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ChatSessionResponse is the session after a mutation together with the
// messages the mutation appended.
type ChatSessionResponse struct {
	Session  ChatSession   `json:"session"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

type CloseChatResponse struct {
	Closed  bool         `json:"closed"`
	Session *ChatSession `json:"session,omitempty"`
}

type ListChatSessionsResponse struct {
	Sessions []ChatSession `json:"sessions"`
}

type ListChatMessagesResponse struct {
	Session  ChatSession   `json:"session"`
	Messages []ChatMessage `json:"messages"`
}

// ChatEvent is the wire form of a session event as published on the
// message bus and pushed to websocket clients.
type ChatEvent struct {
	Type           string       `json:"type"`
	Session        ChatSession  `json:"session"`
	Message        *ChatMessage `json:"message,omitempty"`
	PreviousStatus string       `json:"previousStatus,omitempty"`
	PublishedAt    string       `json:"publishedAt"`
}

// UnreadTotalEvent is pushed to agent dashboards whenever the unread total
// across active sessions changes. Notify marks the changes that should
// alert the agent.
type UnreadTotalEvent struct {
	Type   string `json:"type"`
	Total  int    `json:"total"`
	Notify bool   `json:"notify"`
}
