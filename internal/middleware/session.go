// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/skillup/interviewd/internal/model"
)

// SessionCookieName は認証セッションを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// CookieVerifier は署名付きCookie値からセッションIDを復元するインターフェース。
// auth.CookieSignerの部分集合として定義する。
type CookieVerifier interface {
	Verify(value string) (string, error)
}

// AuthSessionFinder は認証セッションの検索に必要なインターフェース。
// repository.AuthSessionRepositoryの部分集合として定義する。
type AuthSessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.AuthSession, error)
}

// NewSessionMiddleware はHTTP Only Cookieから署名付きセッションIDを読み取り、
// 署名とサーバー側セッションの有効性を検証するミドルウェアを返す。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
// 未認証リクエストはログインページ(/)へ302リダイレクトする。
func NewSessionMiddleware(verifier CookieVerifier, finder AuthSessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieから署名付きセッションIDを取得
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r)
				return
			}

			// 2. HMAC署名の検証
			sessionID, err := verifier.Verify(cookie.Value)
			if err != nil {
				slog.Warn("invalid session cookie signature",
					slog.String("error", err.Error()),
				)
				redirectToLogin(w, r)
				return
			}

			// 3. サーバー側セッションの有効性を検証
			session, err := finder.FindByID(r.Context(), sessionID)
			if err != nil {
				slog.Error("failed to find auth session",
					slog.String("error", err.Error()),
				)
				redirectToLogin(w, r)
				return
			}
			if session == nil {
				redirectToLogin(w, r)
				return
			}

			// 4. 認証済みユーザーIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// redirectToLogin は未認証リクエストをログインページへ誘導する。
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
