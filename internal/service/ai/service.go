package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/oyxning/textventure/backend/internal/config"
	gamemodel "github.com/oyxning/textventure/backend/internal/model/game"
)

// Service turns full adventure transcripts into the next scene via an eino
// chain over the configured Ark chat model. It performs no retries: a failed
// call is surfaced to the session core as-is.
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the generator backed by the configured chat model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("transcript", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chain: runnable}, nil
}

// Generate produces the next scene from the ordered transcript. An empty
// completion counts as a failure so the session core can end the turn with a
// proper notice.
func (s *Service) Generate(ctx context.Context, sessionID string, transcript []gamemodel.Entry) (string, error) {
	input := map[string]any{
		"transcript": toSchemaMessages(transcript),
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run story chain: %w", err)
	}
	if strings.TrimSpace(response.Content) == "" {
		return "", fmt.Errorf("story chain returned empty completion for session %s", sessionID)
	}

	log.Printf("[ai] generated scene session=%s context=%d length=%d", sessionID, len(transcript), len(response.Content))
	return response.Content, nil
}

func toSchemaMessages(transcript []gamemodel.Entry) []*schema.Message {
	messages := make([]*schema.Message, 0, len(transcript))
	for _, entry := range transcript {
		switch entry.Role {
		case gamemodel.RoleSystem:
			messages = append(messages, schema.SystemMessage(entry.Content))
		case gamemodel.RoleUser:
			messages = append(messages, schema.UserMessage(entry.Content))
		case gamemodel.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(entry.Content, nil))
		}
	}
	return messages
}
