// Package session は面接セッションのインメモリストアを提供する。
//
// ストアはプロセス内にのみ存在し、再起動で全セッションが失われる。
// 削除・エビクション・容量上限は持たないため、長時間の連続稼働では
// メモリ使用量が単調増加する。
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skillup/interviewd/internal/model"
)

// Store は面接セッションの永続化インターフェース。
type Store interface {
	// Create は新規セッションを生成して登録する。
	Create(questionText, topic, difficultyLevel string) (model.PendingSession, error)
	// Get は指定IDのセッションを取得する。
	// 見つからない場合はmodel.ErrSessionNotFoundを返す。
	Get(id string) (*model.InterviewSession, error)
	// CompleteEvaluation は指定セッションに評価結果を確定させる。
	// 見つからない場合はmodel.ErrSessionNotFoundを返す。
	CompleteEvaluation(id string, result model.EvaluationResult) (*model.InterviewSession, error)
}

// MemoryStore はStoreのインメモリ実装。
// 全操作はmutexで保護され、複数リクエストからの同時アクセスに耐える。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.InterviewSession
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.InterviewSession),
	}
}

// Create は新規セッションを生成して登録する。
// IDはUUID v4、タイムスタンプはUTCで記録する。
func (s *MemoryStore) Create(questionText, topic, difficultyLevel string) (model.PendingSession, error) {
	pending := model.PendingSession{
		ID:              uuid.New().String(),
		QuestionText:    questionText,
		Topic:           topic,
		DifficultyLevel: difficultyLevel,
		CreatedAt:       time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[pending.ID] = model.InterviewSession{PendingSession: pending}
	return pending, nil
}

// Get は指定IDのセッションのコピーを返す。
// 呼び出し側がストア内部の状態を直接書き換えることはできない。
func (s *MemoryStore) Get(id string) (*model.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}

	return copySession(sess), nil
}

// CompleteEvaluation は指定セッションに評価結果を確定させ、
// 評価済みセッションのコピーを返す。
// 既に評価済みのセッションに対して呼ばれた場合は前回の結果を
// 上書きする（最終書き込み優先）。
func (s *MemoryStore) CompleteEvaluation(id string, result model.EvaluationResult) (*model.InterviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}

	evaluated := model.CompleteEvaluation(sess.PendingSession, result)
	s.sessions[id] = evaluated

	return copySession(evaluated), nil
}

// Len は登録済みセッション数を返す。メトリクスおよびテスト用。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// copySession はセッションの独立したコピーを生成する。
// Resultポインタの指す先も複製する。
func copySession(sess model.InterviewSession) *model.InterviewSession {
	out := sess
	if sess.Result != nil {
		result := *sess.Result
		out.Result = &result
	}
	return &out
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
