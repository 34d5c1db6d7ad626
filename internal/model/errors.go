// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はアプリケーション内で扱う業務エラーを表す。
// Messageはそのままクライアントへ返す文字列であり、
// Codeはハンドラー層でのHTTPステータス判定に使用する。
type APIError struct {
	Code    string // エラーコード
	Message string // クライアントへ返すエラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmptyTranscript = "EMPTY_TRANSCRIPT"
	ErrCodeInvalidSession  = "INVALID_SESSION"
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	ErrCodeUpstreamFailure = "UPSTREAM_FAILURE"
	ErrCodeUpstreamTimeout = "UPSTREAM_TIMEOUT"
	ErrCodeAuthFailed      = "AUTH_FAILED"
	ErrCodeDuplicateEmail  = "DUPLICATE_EMAIL"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewEmptyTranscriptError は空のトランスクリプトに対するエラーを生成する。
// トランスクリプトは空白除去後に1文字以上でなければならない。
func NewEmptyTranscriptError() *APIError {
	return &APIError{
		Code:    ErrCodeEmptyTranscript,
		Message: "Empty transcript",
	}
}

// NewInvalidSessionError は評価リクエストが未知のセッションIDを
// 参照している場合のエラーを生成する。
func NewInvalidSessionError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidSession,
		Message: "Invalid session ID",
	}
}

// NewSessionNotFoundError はセッション参照APIでセッションが
// 見つからない場合のエラーを生成する。
func NewSessionNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeSessionNotFound,
		Message: "Session not found",
	}
}

// NewUpstreamFailureError は言語モデル呼び出しの失敗を表すエラーを生成する。
// 元エラーのメッセージをそのまま保持する（リトライは行わない）。
func NewUpstreamFailureError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamFailure,
		Message: reason,
	}
}

// NewUpstreamTimeoutError は言語モデル呼び出しのタイムアウトを表す
// エラーを生成する。その他の上流失敗とは区別して扱う。
func NewUpstreamTimeoutError() *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamTimeout,
		Message: "Model invocation timed out",
	}
}

// NewAuthFailedError は認証失敗（メールアドレスまたはパスワード不一致）の
// エラーを生成する。どちらが誤っているかは区別しない。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthFailed,
		Message: "Invalid email or password",
	}
}

// NewDuplicateEmailError はメールアドレスの重複登録エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateEmail,
		Message: "Email already registered",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗などの
// 入力不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: reason,
	}
}
