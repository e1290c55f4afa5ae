package conversations

import (
	"context"

	"github.com/trakt-agent/server/internal/agent/model"

	"github.com/cloudwego/eino/schema"
)

// MessagesManager mediates between the graph and the conversation repository:
// it records turns, loads history, and assembles windowed message contexts.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	routerMaxTurns   int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		routerMaxTurns:   config.Router.MaxTurns,
	}
}

// RecordUserMessage persists the current user turn before classification so
// it is part of the loaded history for this and subsequent turns.
func (cm *MessagesManager) RecordUserMessage(ctx context.Context, conversationID string, query string) error {
	return cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(query))
}

// RouterContext builds the message sequence for the intent classifier:
// system prompt followed by the most recent turns (the current user message
// is the tail of history, having been recorded first).
func (cm *MessagesManager) RouterContext(ctx context.Context, conversationID string, systemPrompt string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	recent := trimTail(history.Messages, cm.routerMaxTurns)

	messages := make([]*schema.Message, 0, len(recent)+1)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	for _, msg := range recent {
		if msg == nil || msg.Content == "" {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// NodeContext builds the message sequence for a terminal node: its own
// system prompt plus the full stored history.
func (cm *MessagesManager) NodeContext(ctx context.Context, conversationID string, systemPrompt string) ([]*schema.Message, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
	}
	messages = append(messages, history.Messages...)

	return messages, nil
}

// SaveResponse persists the final assistant result for the turn.
func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
