package interview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/skillup/interviewd/internal/llm"
	"github.com/skillup/interviewd/internal/model"
)

// --- モック ---

type mockStore struct {
	createFn             func(questionText, topic, level string) (model.PendingSession, error)
	getFn                func(id string) (*model.InterviewSession, error)
	completeEvaluationFn func(id string, result model.EvaluationResult) (*model.InterviewSession, error)

	getCalled      bool
	completeCalled bool
}

func (m *mockStore) Create(questionText, topic, level string) (model.PendingSession, error) {
	if m.createFn != nil {
		return m.createFn(questionText, topic, level)
	}
	return model.PendingSession{
		ID:              "sess-1",
		QuestionText:    questionText,
		Topic:           topic,
		DifficultyLevel: level,
		CreatedAt:       time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockStore) Get(id string) (*model.InterviewSession, error) {
	m.getCalled = true
	if m.getFn != nil {
		return m.getFn(id)
	}
	return nil, model.ErrSessionNotFound
}

func (m *mockStore) CompleteEvaluation(id string, result model.EvaluationResult) (*model.InterviewSession, error) {
	m.completeCalled = true
	if m.completeEvaluationFn != nil {
		return m.completeEvaluationFn(id, result)
	}
	sess := model.CompleteEvaluation(model.PendingSession{ID: id}, result)
	return &sess, nil
}

type mockInvoker struct {
	invokeFn func(ctx context.Context, prompt string) (string, error)
	prompts  []string
}

func (m *mockInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.invokeFn != nil {
		return m.invokeFn(ctx, prompt)
	}
	return "response", nil
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

type noopMetrics struct{}

func (noopMetrics) RecordQuestionGenerated()                                {}
func (noopMetrics) RecordQuestionFailure()                                  {}
func (noopMetrics) RecordEvaluation(outcome string)                         {}
func (noopMetrics) RecordLLMRequest(outcome string, duration time.Duration) {}

func newTestService(store *mockStore, invoker *mockInvoker) *Service {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewService(store, invoker, passthroughSanitizer{}, noopMetrics{}, logger)
}

func pendingFixture() *model.InterviewSession {
	return &model.InterviewSession{
		PendingSession: model.PendingSession{
			ID:              "sess-1",
			QuestionText:    "What is an index?",
			Topic:           "Databases",
			DifficultyLevel: "easy",
			CreatedAt:       time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
	}
}

// --- GenerateQuestion ---

// 質問生成が空白除去済みの質問でセッションを作成することを検証
func TestService_GenerateQuestion(t *testing.T) {
	store := &mockStore{}
	invoker := &mockInvoker{
		invokeFn: func(ctx context.Context, prompt string) (string, error) {
			return "\n  What is database normalization?  \n", nil
		},
	}
	svc := newTestService(store, invoker)

	pending, err := svc.GenerateQuestion(context.Background(), "easy", 1, "Databases")
	if err != nil {
		t.Fatalf("GenerateQuestion returned error: %v", err)
	}

	if pending.QuestionText != "What is database normalization?" {
		t.Errorf("QuestionText = %q, want trimmed question", pending.QuestionText)
	}
	if pending.Topic != "Databases" {
		t.Errorf("Topic = %q, want Databases", pending.Topic)
	}
	if pending.DifficultyLevel != "easy" {
		t.Errorf("DifficultyLevel = %q, want easy", pending.DifficultyLevel)
	}

	prompt := invoker.prompts[0]
	if !strings.Contains(prompt, "easy-level interview") {
		t.Errorf("prompt should embed level: %q", prompt)
	}
	if !strings.Contains(prompt, "related to: Databases") {
		t.Errorf("prompt should embed topic: %q", prompt)
	}
}

// 未指定パラメータにデフォルト値が適用されることを検証
func TestService_GenerateQuestion_Defaults(t *testing.T) {
	store := &mockStore{}
	invoker := &mockInvoker{}
	svc := newTestService(store, invoker)

	pending, err := svc.GenerateQuestion(context.Background(), "", 0, "")
	if err != nil {
		t.Fatalf("GenerateQuestion returned error: %v", err)
	}

	if pending.DifficultyLevel != "easy" {
		t.Errorf("DifficultyLevel = %q, want easy", pending.DifficultyLevel)
	}
	if pending.Topic != "Technical" {
		t.Errorf("Topic = %q, want Technical", pending.Topic)
	}
	if !strings.Contains(invoker.prompts[0], "Generate 1 easy-level") {
		t.Errorf("prompt should default count to 1: %q", invoker.prompts[0])
	}
}

// countが上限でクランプされることを検証
func TestService_GenerateQuestion_CountClamped(t *testing.T) {
	store := &mockStore{}
	invoker := &mockInvoker{}
	svc := newTestService(store, invoker)

	if _, err := svc.GenerateQuestion(context.Background(), "hard", 100, "Go"); err != nil {
		t.Fatalf("GenerateQuestion returned error: %v", err)
	}
	if !strings.Contains(invoker.prompts[0], "Generate 5 hard-level") {
		t.Errorf("prompt should clamp count to 5: %q", invoker.prompts[0])
	}
}

// モデル呼び出し失敗がUpstreamFailureになることを検証
func TestService_GenerateQuestion_UpstreamFailure(t *testing.T) {
	store := &mockStore{}
	invoker := &mockInvoker{
		invokeFn: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	svc := newTestService(store, invoker)

	_, err := svc.GenerateQuestion(context.Background(), "easy", 1, "Go")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUpstreamFailure {
		t.Errorf("Code = %q, want UPSTREAM_FAILURE", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "connection refused") {
		t.Errorf("Message should carry underlying error: %q", apiErr.Message)
	}
}

// タイムアウトが他の上流失敗と区別されることを検証
func TestService_GenerateQuestion_Timeout(t *testing.T) {
	store := &mockStore{}
	invoker := &mockInvoker{
		invokeFn: func(ctx context.Context, prompt string) (string, error) {
			return "", llm.ErrTimeout
		},
	}
	svc := newTestService(store, invoker)

	_, err := svc.GenerateQuestion(context.Background(), "easy", 1, "Go")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUpstreamTimeout {
		t.Errorf("Code = %q, want UPSTREAM_TIMEOUT", apiErr.Code)
	}
}

// モデルが空文字を返した場合にエラーとなることを検証
func TestService_GenerateQuestion_EmptyQuestion(t *testing.T) {
	store := &mockStore{}
	invoker := &mockInvoker{
		invokeFn: func(ctx context.Context, prompt string) (string, error) {
			return "   \n  ", nil
		},
	}
	svc := newTestService(store, invoker)

	_, err := svc.GenerateQuestion(context.Background(), "easy", 1, "Go")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUpstreamFailure {
		t.Errorf("expected UPSTREAM_FAILURE for empty question, got %v", err)
	}
}

// --- Evaluate ---

// 空のトランスクリプトがセッション参照より先に拒否されることを検証
func TestService_Evaluate_EmptyTranscript(t *testing.T) {
	store := &mockStore{}
	invoker := &mockInvoker{}
	svc := newTestService(store, invoker)

	for _, transcript := range []string{"", "   ", "\n\t "} {
		_, err := svc.Evaluate(context.Background(), "sess-1", transcript, model.PostureMetrics{})

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmptyTranscript {
			t.Errorf("transcript %q: expected EMPTY_TRANSCRIPT, got %v", transcript, err)
		}
	}

	if store.getCalled {
		t.Error("store must not be consulted for an empty transcript")
	}
	if len(invoker.prompts) != 0 {
		t.Error("model must not be invoked for an empty transcript")
	}
}

// 未知のセッションIDがInvalidSessionとなりストアを変更しないことを検証
func TestService_Evaluate_InvalidSession(t *testing.T) {
	store := &mockStore{
		getFn: func(id string) (*model.InterviewSession, error) {
			return nil, model.ErrSessionNotFound
		},
	}
	invoker := &mockInvoker{}
	svc := newTestService(store, invoker)

	_, err := svc.Evaluate(context.Background(), "unknown", "I used indexing.", model.PostureMetrics{})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidSession {
		t.Fatalf("expected INVALID_SESSION, got %v", err)
	}
	if store.completeCalled {
		t.Error("store must not be mutated for an unknown session")
	}
	if len(invoker.prompts) != 0 {
		t.Error("model must not be invoked for an unknown session")
	}
}

// 評価成功時に結果が確定され、構造化ペイロードが返ることを検証
func TestService_Evaluate_Success(t *testing.T) {
	var committed model.EvaluationResult
	store := &mockStore{
		getFn: func(id string) (*model.InterviewSession, error) {
			return pendingFixture(), nil
		},
		completeEvaluationFn: func(id string, result model.EvaluationResult) (*model.InterviewSession, error) {
			committed = result
			sess := model.CompleteEvaluation(pendingFixture().PendingSession, result)
			return &sess, nil
		},
	}
	invoker := &mockInvoker{
		invokeFn: func(ctx context.Context, prompt string) (string, error) {
			return "## Overall Assessment\nWell structured answer.", nil
		},
	}
	svc := newTestService(store, invoker)

	outcome, err := svc.Evaluate(context.Background(), "sess-1", "I used indexing.", model.PostureMetrics{
		Duration: 33, Stability: "Stable",
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if outcome.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", outcome.SessionID)
	}
	if outcome.Feedback != "## Overall Assessment\nWell structured answer." {
		t.Errorf("Feedback = %q", outcome.Feedback)
	}

	// エコーバックされるペイロードの内容
	data := outcome.SessionData
	if data.QuestionText != "What is an index?" {
		t.Errorf("QuestionText = %q", data.QuestionText)
	}
	if data.UserTranscription != "I used indexing." {
		t.Errorf("UserTranscription = %q", data.UserTranscription)
	}
	if data.Timestamp != "2026-01-15T10:00:00Z" {
		t.Errorf("Timestamp = %q", data.Timestamp)
	}
	if data.PostureData.Duration != 33 {
		t.Errorf("Duration = %v, want 33", data.PostureData.Duration)
	}
	if data.PostureData.Notes != "Not available" {
		t.Errorf("Notes = %q, want default", data.PostureData.Notes)
	}

	// ストアに確定された結果
	if committed.Transcript != "I used indexing." {
		t.Errorf("committed Transcript = %q", committed.Transcript)
	}
	if committed.Posture.Stability != "Stable" {
		t.Errorf("committed Stability = %q", committed.Posture.Stability)
	}
	if committed.EvaluatedAt.IsZero() {
		t.Error("committed EvaluatedAt should be stamped")
	}
}

// 評価プロンプトがセッションの全コンテキストを埋め込むことを検証
func TestService_Evaluate_PromptContent(t *testing.T) {
	store := &mockStore{
		getFn: func(id string) (*model.InterviewSession, error) {
			return pendingFixture(), nil
		},
	}
	invoker := &mockInvoker{}
	svc := newTestService(store, invoker)

	_, err := svc.Evaluate(context.Background(), "sess-1", "My answer.", model.PostureMetrics{
		Duration: 12.5, Stability: "Wobbly", Notes: "leaning",
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	prompt := invoker.prompts[0]
	for _, want := range []string{
		"Session ID: sess-1",
		"Topic: Databases",
		"Difficulty Level: easy",
		"Timestamp: 2026-01-15T10:00:00Z",
		"What is an index?",
		"My answer.",
		"Duration: 12.5 seconds",
		"Stability: Wobbly",
		"Notes: leaning",
		"## Ideal HR-Expected Answer",
		"## Score",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// モデル呼び出し失敗時にセッションがPendingのまま残ることを検証
func TestService_Evaluate_UpstreamFailureLeavesPending(t *testing.T) {
	store := &mockStore{
		getFn: func(id string) (*model.InterviewSession, error) {
			return pendingFixture(), nil
		},
	}
	invoker := &mockInvoker{
		invokeFn: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("upstream exploded")
		},
	}
	svc := newTestService(store, invoker)

	_, err := svc.Evaluate(context.Background(), "sess-1", "answer", model.PostureMetrics{})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUpstreamFailure {
		t.Fatalf("expected UPSTREAM_FAILURE, got %v", err)
	}
	if store.completeCalled {
		t.Error("evaluation must not be committed when the model call fails")
	}
}
