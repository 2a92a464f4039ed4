package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

type stubResponder struct {
	reply Reply
	err   error
	calls int
}

func (r *stubResponder) Reply(ctx context.Context, history []model.ChatMessageItem) (Reply, error) {
	r.calls++
	return r.reply, r.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []SessionEvent
	err    error
}

func (p *recordingPublisher) PublishSessionEvent(ctx context.Context, event SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var fixedNow = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func newTestService(repo Repository, opts ...Option) *Service {
	opts = append([]Option{
		WithTokenSecret([]byte("test-secret")),
		WithRegisterer(prometheus.NewRegistry()),
	}, opts...)
	return NewWithRepository(repo, func() time.Time { return fixedNow }, opts...)
}

func seedSession(repo *memoryRepository, session model.ChatSessionItem) model.ChatSessionItem {
	if session.CreatedAt == "" {
		session.CreatedAt = fixedNow.Format(timestampLayout)
		session.UpdatedAt = session.CreatedAt
	}
	if session.LastMessageAt == "" {
		session.LastMessageAt = session.CreatedAt
	}
	repo.sessions[session.SessionID] = session
	return session
}

func errorCode(err error) ErrorCode {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ""
}

func TestStartSession(t *testing.T) {
	repo := newMemoryRepository()
	pub := &recordingPublisher{}
	svc := newTestService(repo, WithPublisher(pub))

	result, err := svc.StartSession(context.Background(), StartSessionParams{UserName: "Sam", Message: "  Is the Tacoma still available?  "})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}

	if result.Session.Status != model.ChatStatusAI {
		t.Fatalf("unexpected status %s", result.Session.Status)
	}
	if result.Session.UnreadByAgent != 1 || result.Session.UnreadByUser != 0 {
		t.Fatalf("unexpected unread counts %+v", result.Session)
	}
	if len(result.Messages) != 1 || result.Messages[0].Content != "Is the Tacoma still available?" || result.Messages[0].Role != model.ChatRoleUser {
		t.Fatalf("unexpected messages %+v", result.Messages)
	}
	if result.Token == "" {
		t.Fatal("expected session token")
	}

	access, err := svc.ValidateSessionAccess(result.Token)
	if err != nil || access.SessionID != result.Session.SessionID {
		t.Fatalf("token does not grant session: %+v, %v", access, err)
	}

	if got := pub.types(); len(got) != 1 || got[0] != EventSessionCreated {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestStartSessionRequiresMessage(t *testing.T) {
	svc := newTestService(newMemoryRepository())
	if _, err := svc.StartSession(context.Background(), StartSessionParams{Message: "   "}); errorCode(err) != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStartSessionRunsResponder(t *testing.T) {
	repo := newMemoryRepository()
	responder := &stubResponder{reply: Reply{Content: "Yes, it is. Want to book a test drive?"}}
	svc := newTestService(repo, WithResponder(responder))

	result, err := svc.StartSession(context.Background(), StartSessionParams{Message: "Is the Tacoma available?"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}

	if responder.calls != 1 {
		t.Fatalf("expected one responder call, got %d", responder.calls)
	}
	if len(result.Messages) != 2 || result.Messages[1].Role != model.ChatRoleAssistant {
		t.Fatalf("unexpected messages %+v", result.Messages)
	}
	if result.Session.UnreadByUser != 1 || result.Session.Status != model.ChatStatusAI {
		t.Fatalf("unexpected session %+v", result.Session)
	}
	if !(result.Messages[0].Timestamp < result.Messages[1].Timestamp) {
		t.Fatalf("reply not ordered after user message: %s vs %s", result.Messages[0].Timestamp, result.Messages[1].Timestamp)
	}
}

func TestResponderEscalationHandsOff(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, WithResponder(&stubResponder{reply: Reply{NeedsAgent: true, Reason: "asked for a human"}}))

	result, err := svc.StartSession(context.Background(), StartSessionParams{Message: "Can I talk to a person?"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}

	session := repo.session(result.Session.SessionID)
	if session.Status != model.ChatStatusPendingAgent || session.HandoffReason != "asked for a human" {
		t.Fatalf("unexpected session %+v", session)
	}
	last := result.Messages[len(result.Messages)-1]
	if last.Role != model.ChatRoleSystem || last.Content != AgentPendingMessage {
		t.Fatalf("expected pending-agent system message, got %+v", last)
	}
	if session.UnreadByUser != 1 {
		t.Fatalf("expected unreadByUser 1, got %d", session.UnreadByUser)
	}
}

func TestResponderFailureHandsOff(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, WithResponder(&stubResponder{err: errors.New("upstream timeout")}))

	result, err := svc.StartSession(context.Background(), StartSessionParams{Message: "hello"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if result.Session.Status != model.ChatStatusPendingAgent {
		t.Fatalf("expected pending_agent, got %s", result.Session.Status)
	}
}

func TestPostUserMessage(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	started, err := svc.StartSession(context.Background(), StartSessionParams{Message: "hi"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}

	result, err := svc.PostUserMessage(context.Background(), started.Token, "still there?")
	if err != nil {
		t.Fatalf("PostUserMessage error: %v", err)
	}
	if result.Session.UnreadByAgent != 2 {
		t.Fatalf("expected unreadByAgent 2, got %d", result.Session.UnreadByAgent)
	}
	if repo.messageCount(started.Session.SessionID) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", repo.messageCount(started.Session.SessionID))
	}

	if _, err := svc.PostUserMessage(context.Background(), "garbage", "hello"); errorCode(err) != ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestPostUserMessageToResolvedSession(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	started, err := svc.StartSession(context.Background(), StartSessionParams{Message: "hi"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if _, err := svc.CloseSession(context.Background(), started.Session.SessionID, "agent-1"); err != nil {
		t.Fatalf("CloseSession error: %v", err)
	}

	before := repo.messageCount(started.Session.SessionID)
	if _, err := svc.PostUserMessage(context.Background(), started.Token, "hello?"); errorCode(err) != ErrorCodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.messageCount(started.Session.SessionID) != before {
		t.Fatal("message appended to resolved session")
	}
}

func TestPostAgentMessageFirstJoin(t *testing.T) {
	for _, status := range []model.ChatStatus{model.ChatStatusAI, model.ChatStatusPendingAgent} {
		repo := newMemoryRepository()
		pub := &recordingPublisher{}
		svc := newTestService(repo, WithPublisher(pub))
		seedSession(repo, model.ChatSessionItem{SessionID: "s-1", Status: status, UnreadByAgent: 3, UnreadByUser: 2})

		result, err := svc.PostAgentMessage(context.Background(), AgentMessageParams{
			SessionID: "s-1",
			AgentID:   "agent-1",
			AgentName: "Dana",
			Message:   "Hi, I'm Dana from sales.",
		})
		if err != nil {
			t.Fatalf("%s: PostAgentMessage error: %v", status, err)
		}

		session := repo.session("s-1")
		if session.Status != model.ChatStatusWithAgent || session.AgentID != "agent-1" || session.AgentName != "Dana" {
			t.Fatalf("%s: unexpected session %+v", status, session)
		}
		if session.UnreadByUser != 3 {
			t.Fatalf("%s: expected unreadByUser incremented by exactly 1, got %d", status, session.UnreadByUser)
		}
		if session.UnreadByAgent != 0 {
			t.Fatalf("%s: expected unreadByAgent reset, got %d", status, session.UnreadByAgent)
		}

		if len(result.Messages) != 2 {
			t.Fatalf("%s: expected system + agent message, got %+v", status, result.Messages)
		}
		system, agent := result.Messages[0], result.Messages[1]
		if system.Role != model.ChatRoleSystem || !strings.HasPrefix(system.Content, "Dana has joined") {
			t.Fatalf("%s: unexpected system message %+v", status, system)
		}
		if agent.Role != model.ChatRoleAgent || agent.SenderName != "Dana" {
			t.Fatalf("%s: unexpected agent message %+v", status, agent)
		}
		if !(system.Timestamp < agent.Timestamp) {
			t.Fatalf("%s: announcement must precede the agent message", status)
		}
		if repo.messageCount("s-1") != 2 {
			t.Fatalf("%s: expected 2 stored messages, got %d", status, repo.messageCount("s-1"))
		}

		got := pub.types()
		if len(got) != 2 || got[0] != EventStatusChanged || got[1] != EventMessageAppended {
			t.Fatalf("%s: unexpected events %v", status, got)
		}
	}
}

func TestPostAgentMessageAfterJoin(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	seedSession(repo, model.ChatSessionItem{
		SessionID:     "s-1",
		Status:        model.ChatStatusWithAgent,
		AgentID:       "agent-1",
		AgentName:     "Dana",
		UnreadByUser:  1,
		UnreadByAgent: 4,
	})

	result, err := svc.PostAgentMessage(context.Background(), AgentMessageParams{
		SessionID: "s-1",
		AgentID:   "agent-2",
		AgentName: "Lee",
		Message:   "Following up",
	})
	if err != nil {
		t.Fatalf("PostAgentMessage error: %v", err)
	}

	if len(result.Messages) != 1 || result.Messages[0].Role != model.ChatRoleAgent {
		t.Fatalf("expected exactly one agent message, got %+v", result.Messages)
	}
	session := repo.session("s-1")
	if session.UnreadByUser != 2 || session.UnreadByAgent != 0 {
		t.Fatalf("unexpected counters %+v", session)
	}
	if session.AgentID != "agent-1" {
		t.Fatalf("agent should not be replaced, got %s", session.AgentID)
	}
}

func TestPostAgentMessageValidation(t *testing.T) {
	repo := newMemoryRepository()
	repo.failGet = errors.New("store must not be read")
	svc := newTestService(repo)

	cases := []AgentMessageParams{
		{AgentID: "a", AgentName: "A", Message: "m"},
		{SessionID: "s", AgentName: "A", Message: "m"},
		{SessionID: "s", AgentID: "a", Message: "m"},
		{SessionID: "s", AgentID: "a", AgentName: "A", Message: "  "},
	}
	for i, params := range cases {
		if _, err := svc.PostAgentMessage(context.Background(), params); errorCode(err) != ErrorCodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestPostAgentMessageMissingSession(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	_, err := svc.PostAgentMessage(context.Background(), AgentMessageParams{
		SessionID: "missing",
		AgentID:   "agent-1",
		AgentName: "Dana",
		Message:   "hello",
	})
	if errorCode(err) != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if repo.messageCount("missing") != 0 {
		t.Fatal("message stored for missing session")
	}
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	repo := newMemoryRepository()
	pub := &recordingPublisher{}
	svc := newTestService(repo, WithPublisher(pub))
	seedSession(repo, model.ChatSessionItem{SessionID: "s-1", Status: model.ChatStatusWithAgent, AgentID: "agent-1"})

	first, err := svc.CloseSession(context.Background(), "s-1", "agent-1")
	if err != nil || !first.Closed {
		t.Fatalf("first close: %+v, %v", first, err)
	}
	if repo.session("s-1").Status != model.ChatStatusResolved || repo.session("s-1").ClosedBy != "agent-1" {
		t.Fatalf("unexpected session %+v", repo.session("s-1"))
	}

	second, err := svc.CloseSession(context.Background(), "s-1", "agent-1")
	if err != nil || second.Closed {
		t.Fatalf("second close: %+v, %v", second, err)
	}

	missing, err := svc.CloseSession(context.Background(), "never-created", "agent-1")
	if err != nil || missing.Closed {
		t.Fatalf("close of missing session: %+v, %v", missing, err)
	}

	if got := pub.types(); len(got) != 1 {
		t.Fatalf("expected one status event, got %v", got)
	}
}

func TestRequestAgent(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	seedSession(repo, model.ChatSessionItem{SessionID: "s-1", Status: model.ChatStatusAI})

	result, err := svc.RequestAgent(context.Background(), "s-1", "")
	if err != nil {
		t.Fatalf("RequestAgent error: %v", err)
	}
	if result.Session.Status != model.ChatStatusPendingAgent || result.Session.UnreadByUser != 1 {
		t.Fatalf("unexpected session %+v", result.Session)
	}

	again, err := svc.RequestAgent(context.Background(), "s-1", "")
	if err != nil || len(again.Messages) != 0 {
		t.Fatalf("expected no-op on pending session: %+v, %v", again, err)
	}
	if repo.messageCount("s-1") != 1 {
		t.Fatalf("expected a single system message, got %d", repo.messageCount("s-1"))
	}

	seedSession(repo, model.ChatSessionItem{SessionID: "s-2", Status: model.ChatStatusResolved})
	if _, err := svc.RequestAgent(context.Background(), "s-2", ""); errorCode(err) != ErrorCodeConflict {
		t.Fatalf("expected conflict for resolved session, got %v", err)
	}
	if _, err := svc.RequestAgent(context.Background(), "nope", ""); errorCode(err) != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	started, err := svc.StartSession(context.Background(), StartSessionParams{Message: "hi"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if _, err := svc.RequestAgent(context.Background(), started.Session.SessionID, ""); err != nil {
		t.Fatalf("RequestAgent error: %v", err)
	}

	session, err := svc.MarkReadByUser(context.Background(), started.Token)
	if err != nil || session.UnreadByUser != 0 {
		t.Fatalf("MarkReadByUser: %+v, %v", session, err)
	}
	session, err = svc.MarkReadByAgent(context.Background(), started.Session.SessionID)
	if err != nil || session.UnreadByAgent != 0 {
		t.Fatalf("MarkReadByAgent: %+v, %v", session, err)
	}
}

func TestListSessionsAndMessages(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	seedSession(repo, model.ChatSessionItem{SessionID: "old", Status: model.ChatStatusAI, LastMessageAt: "2024-03-01T00:00:00.000000Z"})
	seedSession(repo, model.ChatSessionItem{SessionID: "new", Status: model.ChatStatusWithAgent, LastMessageAt: "2024-03-05T00:00:00.000000Z"})
	seedSession(repo, model.ChatSessionItem{SessionID: "done", Status: model.ChatStatusResolved, LastMessageAt: "2024-03-06T00:00:00.000000Z"})

	res, err := svc.ListSessions(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListSessions error: %v", err)
	}
	if len(res.Sessions) != 2 || res.Sessions[0].SessionID != "new" || res.Sessions[1].SessionID != "old" {
		t.Fatalf("unexpected sessions %+v", res.Sessions)
	}

	if _, err := svc.ListSessions(context.Background(), []model.ChatStatus{"archived"}); errorCode(err) != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	repo.messages["new"] = []model.ChatMessageItem{
		{MessageID: "b", SessionID: "new", Timestamp: "2024-03-05T00:00:02.000000Z"},
		{MessageID: "a", SessionID: "new", Timestamp: "2024-03-05T00:00:01.000000Z"},
	}
	msgs, err := svc.ListMessages(context.Background(), "new")
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}
	if len(msgs.Messages) != 2 || msgs.Messages[0].MessageID != "a" {
		t.Fatalf("messages not ordered by timestamp: %+v", msgs.Messages)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, WithPublisher(&recordingPublisher{err: errors.New("redis down")}))

	if _, err := svc.StartSession(context.Background(), StartSessionParams{Message: "hi"}); err != nil {
		t.Fatalf("publish failure leaked: %v", err)
	}
}

func TestAuthorizeSession(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	started, err := svc.StartSession(context.Background(), StartSessionParams{Message: "hi"})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if _, err := svc.AuthorizeSession(started.Token, started.Session.SessionID); err != nil {
		t.Fatalf("AuthorizeSession error: %v", err)
	}
	if _, err := svc.AuthorizeSession(started.Token, "other"); errorCode(err) != ErrorCodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
