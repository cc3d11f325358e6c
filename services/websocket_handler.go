package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hireready/hireready/models"
	ws "github.com/hireready/hireready/websocket"
)

// Inbound frame: one user turn. Outbound frame: the assistant reply plus
// the completion flag. No token streaming; each frame is a whole turn.
type InboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type OutboundFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Completed bool   `json:"completed,omitempty"`
}

type WebSocketHandler struct {
	interviewService *InterviewService
}

func NewWebSocketHandler(interviewService *InterviewService) *WebSocketHandler {
	return &WebSocketHandler{
		interviewService: interviewService,
	}
}

// HandleMessage processes one inbound frame: persist the user turn, send
// the stored transcript to the completion provider, and reply.
func (h *WebSocketHandler) HandleMessage(client *ws.Client, messageBytes []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(messageBytes, &frame); err != nil {
		slog.Error("Failed to unmarshal WebSocket frame", "error", err, "client_id", client.ID)
		return
	}

	if frame.Type != "user_message" {
		slog.Warn("Unknown frame type", "type", frame.Type, "client_id", client.ID)
		return
	}

	ctx := context.Background()

	if err := h.interviewService.SaveUserMessage(ctx, client.SessionID, frame.Content); err != nil {
		slog.Error("Failed to save user turn", "error", err, "session_id", client.SessionID)
		h.send(client, OutboundFrame{Type: "error", Content: "Failed to save message"})
		return
	}

	turns, err := h.interviewService.TranscriptTurns(ctx, client.SessionID)
	if err != nil {
		slog.Error("Failed to load transcript", "error", err, "session_id", client.SessionID)
		h.send(client, OutboundFrame{Type: "error", Content: "Failed to load transcript"})
		return
	}

	result, err := h.interviewService.Chat(ctx, client.SessionID, turns)
	if err != nil {
		slog.Error("Chat turn failed", "error", err, "session_id", client.SessionID)
		h.send(client, OutboundFrame{Type: "error", Content: "Failed to generate reply"})
		return
	}

	h.send(client, OutboundFrame{
		Type:      models.RoleAssistant + "_message",
		Content:   result.Reply,
		Completed: result.Completed,
	})
}

func (h *WebSocketHandler) send(client *ws.Client, frame OutboundFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		slog.Error("Failed to marshal outbound frame", "error", err, "client_id", client.ID)
		return
	}
	select {
	case client.Send <- payload:
	default:
		slog.Warn("Client send buffer full, dropping frame", "client_id", client.ID)
	}
}
