package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hireready/hireready/models"
	"github.com/hireready/hireready/repository"
)

// defaultCompletionMarkers drive the completion heuristic: an interview is
// inferred complete when the latest assistant reply contains every marker,
// case-insensitively. This is brittle against ordinary phrasing and kept
// only because clients depend on the observed behavior; replace the markers
// to change it.
var defaultCompletionMarkers = []string{"thank you", "overall"}

const defaultSystemPromptTemplate = `You are an expert technical interviewer conducting a %s %s interview
for a %s role. Your job is to:
1. Ask one question at a time.
2. Wait for the candidate's response before proceeding.
3. After each answer, provide brief, constructive feedback (2-3 sentences).
4. Then ask the next question.
5. After %d questions, provide a final overall evaluation with strengths and areas for improvement.

Interview type guidance:
- Technical: Focus on coding problems, system design, algorithms, and domain knowledge.
- Behavioral: Use the STAR method (Situation, Task, Action, Result) for responses.
- Mixed: Alternate between technical and behavioral questions.

Start by greeting the candidate and asking the first question. Be professional, encouraging, and constructive.`

// InterviewService orchestrates interview turns: it forwards the transcript
// to the completion provider and persists both sides of the conversation.
type InterviewService struct {
	repo              *repository.Repository
	completion        CompletionClient
	completionMarkers []string
	systemPrompt      string
}

func NewInterviewService(repo *repository.Repository, completion CompletionClient, systemPrompt string) *InterviewService {
	return &InterviewService{
		repo:              repo,
		completion:        completion,
		completionMarkers: defaultCompletionMarkers,
		systemPrompt:      systemPrompt,
	}
}

type StartSessionParams struct {
	Track          string
	InterviewType  string
	Difficulty     string
	NumQuestions   int
	ResumeText     *string
	ResumeFilename *string
	ResumePDF      []byte
}

type StartSessionResult struct {
	Session *models.InterviewSession
	// Opening is the interviewer's first message.
	Opening string
}

type ChatResult struct {
	Reply     string
	Completed bool
}

// BuildSystemPrompt renders the interviewer prompt for the session
// configuration. The configured template overrides the built-in one and is
// treated as opaque.
func (s *InterviewService) BuildSystemPrompt(track, interviewType, difficulty string, numQuestions int) string {
	template := s.systemPrompt
	if template == "" {
		template = defaultSystemPromptTemplate
	}
	return fmt.Sprintf(template, difficulty, interviewType, track, numQuestions)
}

// Start opens a session, asks the provider for the opening question, and
// persists it as the first assistant message.
func (s *InterviewService) Start(ctx context.Context, userID uint, params StartSessionParams) (*StartSessionResult, error) {
	prompt := s.BuildSystemPrompt(params.Track, params.InterviewType, params.Difficulty, params.NumQuestions)

	opening, err := s.completion.Complete(ctx, []ChatTurn{{Role: models.RoleSystem, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("failed to generate opening message: %w", err)
	}

	session := &models.InterviewSession{
		UserID:         userID,
		Track:          params.Track,
		InterviewType:  params.InterviewType,
		Difficulty:     params.Difficulty,
		NumQuestions:   params.NumQuestions,
		ResumeText:     params.ResumeText,
		ResumeFilename: params.ResumeFilename,
		ResumePDF:      params.ResumePDF,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if _, err := s.repo.SaveMessage(ctx, session.ID, models.RoleAssistant, opening); err != nil {
		return nil, err
	}

	slog.Info("Interview started", "session_id", session.ID, "user_id", userID, "track", params.Track)
	return &StartSessionResult{Session: session, Opening: opening}, nil
}

// Chat forwards the whole transcript so far, persists the assistant reply,
// and marks the session completed when the heuristic fires.
func (s *InterviewService) Chat(ctx context.Context, sessionID uint, turns []ChatTurn) (*ChatResult, error) {
	reply, err := s.completion.Complete(ctx, turns)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	if _, err := s.repo.SaveMessage(ctx, sessionID, models.RoleAssistant, reply); err != nil {
		return nil, err
	}

	completed := s.IsInterviewComplete(reply)
	if completed {
		if err := s.repo.UpdateSessionStatus(ctx, sessionID, models.SessionCompleted); err != nil {
			return nil, err
		}
		slog.Info("Interview completed", "session_id", sessionID)
	}

	return &ChatResult{Reply: reply, Completed: completed}, nil
}

// SaveUserMessage persists one user turn.
func (s *InterviewService) SaveUserMessage(ctx context.Context, sessionID uint, content string) error {
	_, err := s.repo.SaveMessage(ctx, sessionID, models.RoleUser, content)
	return err
}

// TranscriptTurns loads the stored transcript in provider wire form. The
// interviewer prompt is never persisted, so it is rebuilt from the session
// configuration and prefixed as the system turn on every read.
func (s *InterviewService) TranscriptTurns(ctx context.Context, sessionID uint) ([]ChatTurn, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, repository.ErrInvalidSession
	}

	messages, err := s.repo.GetSessionMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	turns := make([]ChatTurn, 0, len(messages)+1)
	turns = append(turns, ChatTurn{
		Role:    models.RoleSystem,
		Content: s.BuildSystemPrompt(session.Track, session.InterviewType, session.Difficulty, session.NumQuestions),
	})
	for _, msg := range messages {
		turns = append(turns, ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	return turns, nil
}

// IsInterviewComplete applies the completion heuristic to an assistant
// reply.
func (s *InterviewService) IsInterviewComplete(reply string) bool {
	lower := strings.ToLower(reply)
	for _, marker := range s.completionMarkers {
		if !strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
