package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hireready/hireready/models"
	"google.golang.org/genai"
)

// ChatTurn is one role-tagged message exchanged with the completion
// provider.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient produces one assistant-role text completion for an
// ordered list of role-tagged messages. The call is synchronous with no
// retries.
type CompletionClient interface {
	Complete(ctx context.Context, turns []ChatTurn) (string, error)
}

// GeminiService backs CompletionClient with the Gemini API.
type GeminiService struct {
	genaiClient *genai.Client
	model       string
}

func NewGeminiService(apiKey, model string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	return &GeminiService{
		genaiClient: genaiClient,
		model:       model,
	}
}

// Complete maps system turns onto the system instruction and the rest onto
// the conversation history, then generates one reply.
func (g *GeminiService) Complete(ctx context.Context, turns []ChatTurn) (string, error) {
	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	var systemInstruction string
	var contents []*genai.Content
	for _, turn := range turns {
		switch turn.Role {
		case models.RoleSystem:
			if systemInstruction != "" {
				systemInstruction += "\n"
			}
			systemInstruction += turn.Content
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(turn.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(turn.Content, genai.RoleUser))
		}
	}

	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText("Hello", genai.RoleUser))
	}

	var config *genai.GenerateContentConfig
	if systemInstruction != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		}
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		g.model,
		contents,
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	response := result.Text()
	slog.Info("Generated completion", "model", g.model, "turns", len(turns), "response_length", len(response))
	return response, nil
}
