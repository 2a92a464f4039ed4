package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound = errors.New("chat repository: not found")
	// ErrConflict means the session exists but no longer satisfies the
	// update's preconditions.
	ErrConflict = errors.New("chat repository: precondition failed")
)

// SessionUpdate is a partial, conditional update of one session. Nil
// pointers leave the attribute untouched. Counters are adjusted atomically.
type SessionUpdate struct {
	Status        *model.ChatStatus
	AgentID       *string
	AgentName     *string
	HandoffReason *string
	ClosedBy      *string

	UnreadByUserDelta  int
	UnreadByAgentDelta int
	ResetUnreadByUser  bool
	ResetUnreadByAgent bool

	UpdatedAt     string
	LastMessageAt string

	// AllowedFrom restricts the update to sessions currently in one of
	// these statuses. Empty means any status.
	AllowedFrom []model.ChatStatus
	// RequireNoAgent restricts the update to sessions no agent has joined.
	RequireNoAgent bool
}

type Repository interface {
	CreateSession(ctx context.Context, session model.ChatSessionItem) error
	GetSession(ctx context.Context, sessionID string) (model.ChatSessionItem, error)
	UpdateSession(ctx context.Context, sessionID string, update SessionUpdate) (model.ChatSessionItem, error)
	ListSessionsByStatus(ctx context.Context, statuses []model.ChatStatus) ([]model.ChatSessionItem, error)
	CreateMessage(ctx context.Context, message model.ChatMessageItem) error
	ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessageItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func sessionKey(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"sessionId": &types.AttributeValueMemberS{Value: sessionID},
	}
}

func (r *DynamoRepository) CreateSession(ctx context.Context, session model.ChatSessionItem) error {
	return r.db.Client.PutItemConditional(ctx, model.ChatSessionsTable, session, &database.Condition{
		Expression: "attribute_not_exists(sessionId)",
	})
}

func (r *DynamoRepository) GetSession(ctx context.Context, sessionID string) (model.ChatSessionItem, error) {
	var session model.ChatSessionItem
	err := r.db.Client.GetItem(ctx, model.ChatSessionsTable, sessionKey(sessionID), &session)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.ChatSessionItem{}, ErrNotFound
		}
		return model.ChatSessionItem{}, err
	}
	return session, nil
}

func (r *DynamoRepository) UpdateSession(ctx context.Context, sessionID string, update SessionUpdate) (model.ChatSessionItem, error) {
	sets := []string{"#updatedAt = :updatedAt"}
	var adds []string
	values := map[string]types.AttributeValue{
		":updatedAt": &types.AttributeValueMemberS{Value: update.UpdatedAt},
	}
	names := map[string]string{
		"#updatedAt": "updatedAt",
	}

	setString := func(attr string, value *string) {
		if value == nil {
			return
		}
		sets = append(sets, fmt.Sprintf("#%s = :%s", attr, attr))
		values[":"+attr] = &types.AttributeValueMemberS{Value: *value}
		names["#"+attr] = attr
	}

	if update.LastMessageAt != "" {
		setString("lastMessageAt", &update.LastMessageAt)
	}
	if update.Status != nil {
		status := string(*update.Status)
		setString("status", &status)
	}
	setString("agentId", update.AgentID)
	setString("agentName", update.AgentName)
	setString("handoffReason", update.HandoffReason)
	setString("closedBy", update.ClosedBy)

	counter := func(attr string, reset bool, delta int) {
		switch {
		case reset:
			sets = append(sets, fmt.Sprintf("#%s = :zero", attr))
			values[":zero"] = &types.AttributeValueMemberN{Value: "0"}
			names["#"+attr] = attr
		case delta != 0:
			adds = append(adds, fmt.Sprintf("#%s :%s", attr, attr))
			values[":"+attr] = &types.AttributeValueMemberN{Value: strconv.Itoa(delta)}
			names["#"+attr] = attr
		}
	}
	counter("unreadByUser", update.ResetUnreadByUser, update.UnreadByUserDelta)
	counter("unreadByAgent", update.ResetUnreadByAgent, update.UnreadByAgentDelta)

	updateExpr := "SET " + strings.Join(sets, ", ")
	if len(adds) > 0 {
		updateExpr += " ADD " + strings.Join(adds, ", ")
	}

	cond := &database.Condition{
		Expression: "attribute_exists(sessionId)",
		Values:     map[string]types.AttributeValue{},
		Names:      map[string]string{},
	}
	if update.RequireNoAgent {
		cond.Expression += " AND attribute_not_exists(agentId)"
	}
	if len(update.AllowedFrom) > 0 {
		placeholders := make([]string, 0, len(update.AllowedFrom))
		for i, status := range update.AllowedFrom {
			key := fmt.Sprintf(":from%d", i)
			placeholders = append(placeholders, key)
			cond.Values[key] = &types.AttributeValueMemberS{Value: string(status)}
		}
		cond.Names["#currentStatus"] = "status"
		cond.Expression += fmt.Sprintf(" AND #currentStatus IN (%s)", strings.Join(placeholders, ", "))
	}

	var session model.ChatSessionItem
	err := r.db.Client.UpdateItem(
		ctx,
		model.ChatSessionsTable,
		sessionKey(sessionID),
		updateExpr,
		values,
		names,
		cond,
		&session,
	)
	if err != nil {
		if errors.Is(err, database.ErrConditionFailed) {
			if _, getErr := r.GetSession(ctx, sessionID); errors.Is(getErr, ErrNotFound) {
				return model.ChatSessionItem{}, ErrNotFound
			}
			return model.ChatSessionItem{}, ErrConflict
		}
		return model.ChatSessionItem{}, err
	}
	return session, nil
}

func (r *DynamoRepository) ListSessionsByStatus(ctx context.Context, statuses []model.ChatStatus) ([]model.ChatSessionItem, error) {
	keys := make([]string, 0, len(statuses))
	for _, status := range statuses {
		keys = append(keys, string(status))
	}

	items, err := r.db.Client.QueryIndexByValues(
		ctx,
		model.ChatSessionsTable,
		model.ChatSessionsByStatusIndex,
		"status",
		keys,
	)
	if err != nil {
		return nil, err
	}

	sessions := make([]model.ChatSessionItem, 0, len(items))
	for _, item := range items {
		var session model.ChatSessionItem
		if err := attributevalue.UnmarshalMap(item, &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	sortSessions(sessions)
	return sessions, nil
}

func (r *DynamoRepository) CreateMessage(ctx context.Context, message model.ChatMessageItem) error {
	return r.db.Client.PutItem(ctx, model.ChatMessagesTable, message)
}

func (r *DynamoRepository) ListMessages(ctx context.Context, sessionID string) ([]model.ChatMessageItem, error) {
	items, err := r.db.Client.QueryAll(
		ctx,
		model.ChatMessagesTable,
		aws.String(model.ChatMessagesBySessionIndex),
		"sessionId = :sessionId",
		map[string]types.AttributeValue{
			":sessionId": &types.AttributeValueMemberS{Value: sessionID},
		},
		nil,
	)
	if err != nil {
		return nil, err
	}

	messages := make([]model.ChatMessageItem, 0, len(items))
	for _, item := range items {
		var message model.ChatMessageItem
		if err := attributevalue.UnmarshalMap(item, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	sortMessages(messages)
	return messages, nil
}

// sortSessions orders sessions by most recent activity first.
func sortSessions(sessions []model.ChatSessionItem) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return parseTime(sessions[i].LastMessageAt).After(parseTime(sessions[j].LastMessageAt))
	})
}

// sortMessages orders messages by their write timestamp, oldest first.
func sortMessages(messages []model.ChatMessageItem) {
	sort.SliceStable(messages, func(i, j int) bool {
		return parseTime(messages[i].Timestamp).Before(parseTime(messages[j].Timestamp))
	})
}

func parseTime(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}
