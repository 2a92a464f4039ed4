// Package responder holds the automated side of the site chat: an
// LLM-backed responder and a keyword fallback used when no model is
// configured.
package responder

import (
	"strings"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"
)

// HandoffMarker is appended by the model to a reply when the visitor should
// be passed to a human.
const HandoffMarker = "[HANDOFF]"

const defaultSystemPrompt = `You are the virtual assistant of DesertPort Autos, a used and classic car dealership.
Answer questions about inventory, consignment, shipping, financing and visiting hours briefly and politely.
Never invent prices, availability or vehicle history. If you are unsure, or the visitor asks for a person,
wants to negotiate, book a test drive or discuss a trade-in, end your reply with ` + HandoffMarker + `.`

var handoffKeywords = []string{
	"agent",
	"human",
	"person",
	"representative",
	"salesperson",
	"someone real",
	"call me",
}

// FromEnv returns the OpenAI responder when an API key is configured and the
// keyword responder otherwise.
func FromEnv() chat.Responder {
	apiKey := env.Get(env.OpenAIAPIKey)
	if apiKey == "" {
		return NewRules()
	}
	return NewOpenAI(Config{
		APIKey:  apiKey,
		BaseURL: env.Get(env.OpenAIBaseURL),
		Model:   env.GetOrDefault(env.OpenAIModel, defaultModel),
	})
}

// wantsHuman reports whether the latest user message asks for a person.
func wantsHuman(history []model.ChatMessageItem) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != model.ChatRoleUser {
			continue
		}
		text := strings.ToLower(history[i].Content)
		for _, keyword := range handoffKeywords {
			if strings.Contains(text, keyword) {
				return true
			}
		}
		return false
	}
	return false
}
