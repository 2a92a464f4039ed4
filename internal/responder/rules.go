package responder

import (
	"context"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"
)

const (
	greetingReply = "Thanks for reaching out to DesertPort Autos! Ask me about our inventory, consignment or shipping, or type \"agent\" to talk to our team."
	followUpReply = "I've passed your question along. If you'd like a member of our team to help directly, just type \"agent\"."
)

// Rules is the responder used when no model is configured. It greets once,
// acknowledges follow-ups and hands off when the visitor asks for a person.
type Rules struct{}

func NewRules() *Rules {
	return &Rules{}
}

func (Rules) Reply(ctx context.Context, history []model.ChatMessageItem) (chat.Reply, error) {
	if wantsHuman(history) {
		return chat.Reply{NeedsAgent: true, Reason: "visitor asked for a person"}, nil
	}

	for _, msg := range history {
		if msg.Role == model.ChatRoleAssistant {
			return chat.Reply{Content: followUpReply}, nil
		}
	}
	return chat.Reply{Content: greetingReply}, nil
}
