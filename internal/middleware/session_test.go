package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skillup/interviewd/internal/auth"
	"github.com/skillup/interviewd/internal/model"
)

// --- モック定義 ---

type mockAuthSessionRepository struct {
	findByIDFn func(ctx context.Context, id string) (*model.AuthSession, error)
}

func (m *mockAuthSessionRepository) FindByID(ctx context.Context, id string) (*model.AuthSession, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

const testSecret = "middleware-test-secret"

// --- テスト ---

// TestSessionMiddleware_ValidSession_InjectsUserID は署名済みCookieを持つ
// 有効なセッションでユーザーIDがコンテキストに注入されることを検証する。
func TestSessionMiddleware_ValidSession_InjectsUserID(t *testing.T) {
	signer := auth.NewCookieSigner(testSecret)
	repo := &mockAuthSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.AuthSession, error) {
			if id == "valid-session-id" {
				return &model.AuthSession{
					ID:        "valid-session-id",
					UserID:    "user-123",
					ExpiresAt: time.Now().Add(1 * time.Hour),
				}, nil
			}
			return nil, nil
		},
	}

	mw := NewSessionMiddleware(signer, repo)

	var capturedUserID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		capturedUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/interview", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signer.Sign("valid-session-id")})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if capturedUserID != "user-123" {
		t.Errorf("userID = %q, want %q", capturedUserID, "user-123")
	}
}

// TestSessionMiddleware_NoSessionCookie_Redirects はCookieなしのリクエストが
// ログインページへリダイレクトされることを検証する。
func TestSessionMiddleware_NoSessionCookie_Redirects(t *testing.T) {
	signer := auth.NewCookieSigner(testSecret)
	repo := &mockAuthSessionRepository{}
	mw := NewSessionMiddleware(signer, repo)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/interview", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
}

// TestSessionMiddleware_TamperedSignature_Redirects は署名が改竄された
// Cookieが拒否されることを検証する。
func TestSessionMiddleware_TamperedSignature_Redirects(t *testing.T) {
	signer := auth.NewCookieSigner(testSecret)
	repoTouched := false
	repo := &mockAuthSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.AuthSession, error) {
			repoTouched = true
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(signer, repo)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	forged := auth.NewCookieSigner("other-secret").Sign("valid-session-id")
	req := httptest.NewRequest(http.MethodGet, "/interview", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: forged})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusFound)
	}
	if repoTouched {
		t.Error("repository should not be queried for a tampered cookie")
	}
}

// TestSessionMiddleware_UnknownSession_Redirects はサーバー側に存在しない
// セッションIDが拒否されることを検証する。
func TestSessionMiddleware_UnknownSession_Redirects(t *testing.T) {
	signer := auth.NewCookieSigner(testSecret)
	repo := &mockAuthSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.AuthSession, error) {
			return nil, nil
		},
	}
	mw := NewSessionMiddleware(signer, repo)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/interview", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: signer.Sign("expired-session-id")})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusFound)
	}
}

// TestUserIDFromContext_NotSet はコンテキストにユーザーIDがない場合に
// エラーを返すことを検証する。
func TestUserIDFromContext_NotSet(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	if err == nil {
		t.Error("expected error for missing user ID")
	}
}

// TestContextWithUserID はコンテキストへの注入と取得の往復を検証する。
func TestContextWithUserID(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-42")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("userID = %q, want %q", userID, "user-42")
	}
}
