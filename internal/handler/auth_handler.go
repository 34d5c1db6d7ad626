package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/skillup/interviewd/internal/middleware"
	"github.com/skillup/interviewd/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, name, email, password string) error
	// Login は認証情報を検証しサーバー側セッションを確立する。
	Login(ctx context.Context, email, password string) (*model.AuthSession, error)
	// Logout はサーバー側セッションを破棄する。
	Logout(ctx context.Context, sessionID string) error
}

// UserFinder は認証済みユーザーの取得に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// CookieCodec はセッションCookie値の署名と検証のインターフェース。
// auth.CookieSignerを想定する。
type CookieCodec interface {
	Sign(sessionID string) string
	Verify(value string) (string, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はユーザー登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	users   UserFinder
	codec   CookieCodec
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, users UserFinder, codec CookieCodec, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		users:   users,
		codec:   codec,
		config:  config,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerResponse はユーザー登録のAPIレスポンス。
type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse は認証済みユーザー情報のAPIレスポンス。
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register はユーザー登録を処理する。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, registerResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := h.service.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, http.StatusOK, registerResponse{Success: false, Message: apiErr.Message})
			return
		}
		slog.Error("user registration failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, registerResponse{Success: false, Message: "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{Success: true})
}

// Login は認証情報の検証とセッションCookieの発行を処理する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    h.codec.Sign(session.ID),
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

// Logout はサーバー側セッションの破棄とCookieの削除を処理する。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if sessionID, err := h.codec.Verify(cookie.Value); err == nil {
			if err := h.service.Logout(r.Context(), sessionID); err != nil {
				slog.Error("failed to delete auth session", slog.String("error", err.Error()))
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// Interview は認証済みユーザーの情報を返す。
// GET /interview（セッションミドルウェアで保護される）
func (h *AuthHandler) Interview(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		slog.Error("failed to find user", slog.String("error", err.Error()))
		writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}
