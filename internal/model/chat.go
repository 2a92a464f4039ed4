package model

type ChatStatus string

const (
	ChatStatusAI           ChatStatus = "ai"
	ChatStatusPendingAgent ChatStatus = "pending_agent"
	ChatStatusWithAgent    ChatStatus = "with_agent"
	ChatStatusResolved     ChatStatus = "resolved"
)

// ActiveChatStatuses is every status a session can be in before it is resolved.
var ActiveChatStatuses = []ChatStatus{
	ChatStatusAI,
	ChatStatusPendingAgent,
	ChatStatusWithAgent,
}

func (s ChatStatus) Valid() bool {
	switch s {
	case ChatStatusAI, ChatStatusPendingAgent, ChatStatusWithAgent, ChatStatusResolved:
		return true
	}
	return false
}

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleAgent     ChatRole = "agent"
	ChatRoleSystem    ChatRole = "system"
)

type ChatSessionItem struct {
	SessionID     string     `dynamodbav:"sessionId"`
	Status        ChatStatus `dynamodbav:"status"`
	UserID        string     `dynamodbav:"userId,omitempty"`
	UserName      string     `dynamodbav:"userName,omitempty"`
	AgentID       string     `dynamodbav:"agentId,omitempty"`
	AgentName     string     `dynamodbav:"agentName,omitempty"`
	UnreadByUser  int        `dynamodbav:"unreadByUser"`
	UnreadByAgent int        `dynamodbav:"unreadByAgent"`
	HandoffReason string     `dynamodbav:"handoffReason,omitempty"`
	ClosedBy      string     `dynamodbav:"closedBy,omitempty"`
	CreatedAt     string     `dynamodbav:"createdAt"`
	UpdatedAt     string     `dynamodbav:"updatedAt"`
	LastMessageAt string     `dynamodbav:"lastMessageAt"`
}

type ChatMessageItem struct {
	PK         string   `dynamodbav:"pk"`
	MessageID  string   `dynamodbav:"messageId"`
	SessionID  string   `dynamodbav:"sessionId"`
	Role       ChatRole `dynamodbav:"role"`
	Content    string   `dynamodbav:"content"`
	SenderName string   `dynamodbav:"senderName,omitempty"`
	Timestamp  string   `dynamodbav:"timestamp"`
}
