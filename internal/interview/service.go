// Package interview は面接質問の生成と回答評価のビジネスロジックを提供する。
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skillup/interviewd/internal/llm"
	"github.com/skillup/interviewd/internal/model"
)

// 質問生成パラメータのデフォルト値
const (
	defaultLevel = "easy"
	defaultTopic = "Technical"
	defaultCount = 1
	maxCount     = 5
)

// SessionStore はサービスが必要とするセッションストアのインターフェース。
type SessionStore interface {
	Create(questionText, topic, difficultyLevel string) (model.PendingSession, error)
	Get(id string) (*model.InterviewSession, error)
	CompleteEvaluation(id string, result model.EvaluationResult) (*model.InterviewSession, error)
}

// FeedbackSanitizer はモデル出力のサニタイズに必要なインターフェース。
type FeedbackSanitizer interface {
	Sanitize(raw string) string
}

// MetricsRecorder はサービスが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordQuestionGenerated()
	RecordQuestionFailure()
	RecordEvaluation(outcome string)
	RecordLLMRequest(outcome string, duration time.Duration)
}

// PostureData は姿勢メトリクスのワイヤ表現。
type PostureData struct {
	Duration  float64 `json:"duration"`
	Stability string  `json:"stability"`
	Notes     string  `json:"notes"`
}

// SessionData は評価プロンプトの構築に使用し、そのままクライアントへ
// エコーバックされる構造化ペイロード。
type SessionData struct {
	SessionID         string      `json:"session_id"`
	QuestionText      string      `json:"question_text"`
	UserTranscription string      `json:"user_transcription"`
	Topic             string      `json:"topic"`
	DifficultyLevel   string      `json:"difficulty_level"`
	Timestamp         string      `json:"timestamp"`
	PostureData       PostureData `json:"posture_data"`
}

// EvaluationOutcome は評価操作の結果を表す。
type EvaluationOutcome struct {
	SessionID   string
	Feedback    string
	SessionData SessionData
}

// Service は質問生成と評価のビジネスロジックを提供する。
type Service struct {
	store     SessionStore
	invoker   llm.Invoker
	sanitizer FeedbackSanitizer
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(store SessionStore, invoker llm.Invoker, sanitizer FeedbackSanitizer, metrics MetricsRecorder, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		invoker:   invoker,
		sanitizer: sanitizer,
		metrics:   metrics,
		logger:    logger,
	}
}

// GenerateQuestion は言語モデルで面接質問を生成し、新規セッションを作成する。
// levelとtopicが空の場合はデフォルト値を適用する。
// countはプロンプトに埋め込まれるが、保存されるセッションは常に1件。
func (s *Service) GenerateQuestion(ctx context.Context, level string, count int, topic string) (*model.PendingSession, error) {
	if strings.TrimSpace(level) == "" {
		level = defaultLevel
	}
	if strings.TrimSpace(topic) == "" {
		topic = defaultTopic
	}
	if count < 1 {
		count = defaultCount
	}
	if count > maxCount {
		count = maxCount
	}

	prompt := buildQuestionPrompt(level, count, topic)

	start := time.Now()
	text, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		s.metrics.RecordLLMRequest("failure", time.Since(start))
		s.metrics.RecordQuestionFailure()
		s.logger.Error("question generation failed",
			slog.String("topic", topic),
			slog.String("level", level),
			slog.String("error", err.Error()),
		)
		return nil, upstreamError(err)
	}
	s.metrics.RecordLLMRequest("success", time.Since(start))

	question := strings.TrimSpace(text)
	if question == "" {
		s.metrics.RecordQuestionFailure()
		return nil, model.NewUpstreamFailureError("model returned an empty question")
	}

	pending, err := s.store.Create(question, topic, level)
	if err != nil {
		s.metrics.RecordQuestionFailure()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.RecordQuestionGenerated()
	s.logger.Info("interview question generated",
		slog.String("session_id", pending.ID),
		slog.String("topic", topic),
		slog.String("level", level),
	)

	return &pending, nil
}

// Evaluate はトランスクリプトと姿勢メトリクスを検証し、言語モデルによる
// 構造化フィードバックを生成してセッションに確定させる。
//
// 検証順序は固定: まずトランスクリプトの空チェック、次にセッション参照。
// モデル呼び出しが失敗した場合、セッションはPending状態のまま残る
// （評価結果は成功時に一括で確定される）。
func (s *Service) Evaluate(ctx context.Context, sessionID, transcript string, posture model.PostureMetrics) (*EvaluationOutcome, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, model.NewEmptyTranscriptError()
	}

	sess, err := s.store.Get(sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.NewInvalidSessionError()
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	posture = posture.Normalize()

	data := SessionData{
		SessionID:         sess.ID,
		QuestionText:      sess.QuestionText,
		UserTranscription: transcript,
		Topic:             sess.Topic,
		DifficultyLevel:   sess.DifficultyLevel,
		Timestamp:         sess.CreatedAt.Format(time.RFC3339),
		PostureData: PostureData{
			Duration:  posture.Duration,
			Stability: posture.Stability,
			Notes:     posture.Notes,
		},
	}

	prompt := buildEvaluationPrompt(data)

	start := time.Now()
	raw, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		s.metrics.RecordLLMRequest("failure", time.Since(start))
		s.metrics.RecordEvaluation("failure")
		s.logger.Error("evaluation failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return nil, upstreamError(err)
	}
	s.metrics.RecordLLMRequest("success", time.Since(start))

	feedback := s.sanitizer.Sanitize(raw)

	if _, err := s.store.CompleteEvaluation(sessionID, model.EvaluationResult{
		Transcript:  transcript,
		Posture:     posture,
		Feedback:    feedback,
		EvaluatedAt: time.Now().UTC(),
	}); err != nil {
		s.metrics.RecordEvaluation("failure")
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.NewInvalidSessionError()
		}
		return nil, fmt.Errorf("failed to commit evaluation: %w", err)
	}

	s.metrics.RecordEvaluation("success")
	s.logger.Info("interview answer evaluated",
		slog.String("session_id", sessionID),
		slog.Int("feedback_length", len(feedback)),
	)

	return &EvaluationOutcome{
		SessionID:   sessionID,
		Feedback:    feedback,
		SessionData: data,
	}, nil
}

// upstreamError はモデル呼び出しのエラーをAPIエラーへ変換する。
// タイムアウトはその他の上流失敗と区別する。
func upstreamError(err error) error {
	if errors.Is(err, llm.ErrTimeout) {
		return model.NewUpstreamTimeoutError()
	}
	return model.NewUpstreamFailureError(err.Error())
}
