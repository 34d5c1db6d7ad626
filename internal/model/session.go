// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"strings"
	"time"
)

// ErrSessionNotFound はセッションストアに該当IDが存在しない場合のエラー。
var ErrSessionNotFound = errors.New("session not found")

// 姿勢メトリクスのデフォルト値
const (
	defaultPostureStability = "Unknown"
	defaultPostureNotes     = "Not available"
)

// PendingSession は質問発行済み・回答未評価の面接セッションを表す。
// 全フィールドは生成時に確定し、以後変更されない。
type PendingSession struct {
	ID              string
	QuestionText    string
	Topic           string
	DifficultyLevel string
	CreatedAt       time.Time
}

// PostureMetrics はクライアントから送信される姿勢・ボディランゲージの
// 計測値を表す。
type PostureMetrics struct {
	Duration  float64 // 回答時間（秒）
	Stability string  // 安定性ラベル
	Notes     string  // 自由記述
}

// Normalize は未設定フィールドにデフォルト値を適用した
// PostureMetricsを返す。durationのゼロ値はそのまま扱う。
func (p PostureMetrics) Normalize() PostureMetrics {
	if strings.TrimSpace(p.Stability) == "" {
		p.Stability = defaultPostureStability
	}
	if strings.TrimSpace(p.Notes) == "" {
		p.Notes = defaultPostureNotes
	}
	return p
}

// EvaluationResult は1回の評価で確定する結果一式を表す。
// トランスクリプト・姿勢メトリクス・フィードバックは常に同時に設定される。
type EvaluationResult struct {
	Transcript  string
	Posture     PostureMetrics
	Feedback    string
	EvaluatedAt time.Time
}

// InterviewSession はセッションの全体像を表す。
// Resultがnilの間はPending状態、設定された時点でEvaluated状態となる。
type InterviewSession struct {
	PendingSession
	Result *EvaluationResult
}

// Evaluated はセッションが評価済みかどうかを返す。
func (s *InterviewSession) Evaluated() bool {
	return s.Result != nil
}

// CompleteEvaluation はPendingSessionと評価結果から評価済みセッションを
// 構築する純粋な状態遷移関数。元のPendingSessionは変更しない。
func CompleteEvaluation(pending PendingSession, result EvaluationResult) InterviewSession {
	return InterviewSession{
		PendingSession: pending,
		Result:         &result,
	}
}
