// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptでハッシュ化された値のみを保持する。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthSession はログイン済みユーザーのサーバーサイドセッションを表す。
// CookieにはセッションIDの署名付き値のみを保存する。
type AuthSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
