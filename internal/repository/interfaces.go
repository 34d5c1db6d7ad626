// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/skillup/interviewd/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反はmodel.APIError(DUPLICATE_EMAIL)を返す。
	Create(ctx context.Context, user *model.User) error
}

// AuthSessionRepository はログインセッションの永続化インターフェース。
type AuthSessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.AuthSession) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AuthSession, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}
