package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillup/interviewd/internal/interview"
	"github.com/skillup/interviewd/internal/model"
)

// InterviewServiceInterface は面接ハンドラーが必要とするサービスインターフェース。
type InterviewServiceInterface interface {
	// GenerateQuestion は面接質問を生成しセッションを登録する。
	GenerateQuestion(ctx context.Context, level string, count int, topic string) (*model.PendingSession, error)
	// Evaluate はトランスクリプトと姿勢データを評価する。
	Evaluate(ctx context.Context, sessionID, transcript string, posture model.PostureMetrics) (*interview.EvaluationOutcome, error)
}

// SessionReader はセッション参照APIに必要なインターフェース。
// session.Storeの部分集合として定義する。
type SessionReader interface {
	Get(id string) (*model.InterviewSession, error)
}

// InterviewHandler は面接質問生成・評価・セッション参照のHTTPハンドラー。
type InterviewHandler struct {
	service InterviewServiceInterface
	reader  SessionReader
}

// NewInterviewHandler はInterviewHandlerを生成する。
func NewInterviewHandler(service InterviewServiceInterface, reader SessionReader) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		reader:  reader,
	}
}

// generateQuestionRequest は質問生成リクエストのボディ。全フィールド任意。
type generateQuestionRequest struct {
	Level string `json:"level"`
	Count int    `json:"count"`
	Topic string `json:"topic"`
}

// generateQuestionResponse は質問生成のAPIレスポンス。
type generateQuestionResponse struct {
	SessionID       string `json:"session_id"`
	Question        string `json:"question"`
	Topic           string `json:"topic"`
	DifficultyLevel string `json:"difficulty_level"`
	Timestamp       string `json:"timestamp"`
}

// postureDataRequest は評価リクエストに含まれる姿勢データ。全フィールド任意。
type postureDataRequest struct {
	Duration  float64 `json:"duration"`
	Stability string  `json:"stability"`
	Notes     string  `json:"notes"`
}

// evaluateRequest は評価リクエストのボディ。
type evaluateRequest struct {
	SessionID   string             `json:"session_id"`
	Transcript  string             `json:"transcript"`
	PostureData postureDataRequest `json:"posture_data"`
}

// evaluateResponse は評価のAPIレスポンス。
type evaluateResponse struct {
	SessionID   string                `json:"session_id"`
	Feedback    string                `json:"feedback"`
	SessionData interview.SessionData `json:"session_data"`
}

// sessionResponse はセッション参照のAPIレスポンス。
// 未評価セッションでは評価系フィールドがnullになる。
type sessionResponse struct {
	SessionID         string              `json:"session_id"`
	QuestionText      string              `json:"question_text"`
	UserTranscription *string             `json:"user_transcription"`
	Topic             string              `json:"topic"`
	DifficultyLevel   string              `json:"difficulty_level"`
	Timestamp         string              `json:"timestamp"`
	PostureData       *postureDataRequest `json:"posture_data"`
	Feedback          *string             `json:"feedback"`
}

// GenerateQuestion は面接質問の生成を処理する。
// POST /hr-questions
func (h *InterviewHandler) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	// ボディは任意。空ボディや解析失敗時は全てデフォルト値で生成する。
	var req generateQuestionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	pending, err := h.service.GenerateQuestion(r.Context(), req.Level, req.Count, req.Topic)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateQuestionResponse{
		SessionID:       pending.ID,
		Question:        pending.QuestionText,
		Topic:           pending.Topic,
		DifficultyLevel: pending.DifficultyLevel,
		Timestamp:       pending.CreatedAt.Format(time.RFC3339),
	})
}

// Evaluate はトランスクリプトと姿勢データの評価を処理する。
// POST /evaluate
func (h *InterviewHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	posture := model.PostureMetrics{
		Duration:  req.PostureData.Duration,
		Stability: req.PostureData.Stability,
		Notes:     req.PostureData.Notes,
	}

	outcome, err := h.service.Evaluate(r.Context(), req.SessionID, req.Transcript, posture)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		SessionID:   outcome.SessionID,
		Feedback:    outcome.Feedback,
		SessionData: outcome.SessionData,
	})
}

// GetSession はセッションの現在の状態を返す。
// GET /session/{id}
func (h *InterviewHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess, err := h.reader.Get(sessionID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			handleServiceError(w, model.NewSessionNotFoundError())
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

// toSessionResponse はInterviewSessionをAPIレスポンスに変換する。
func toSessionResponse(sess *model.InterviewSession) sessionResponse {
	resp := sessionResponse{
		SessionID:       sess.ID,
		QuestionText:    sess.QuestionText,
		Topic:           sess.Topic,
		DifficultyLevel: sess.DifficultyLevel,
		Timestamp:       sess.CreatedAt.Format(time.RFC3339),
	}

	if sess.Result != nil {
		resp.UserTranscription = &sess.Result.Transcript
		resp.PostureData = &postureDataRequest{
			Duration:  sess.Result.Posture.Duration,
			Stability: sess.Result.Posture.Stability,
			Notes:     sess.Result.Posture.Notes,
		}
		resp.Feedback = &sess.Result.Feedback
	}

	return resp
}
