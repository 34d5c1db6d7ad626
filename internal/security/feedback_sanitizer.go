// Package security はアプリケーションのセキュリティ機能を提供する。
//
// FeedbackSanitizerService は言語モデルが生成したフィードバックテキストを
// サニタイズし、応答に紛れ込んだ生HTMLによるXSSリスクからクライアントを
// 保護する。bluemondayライブラリの許可リストベースのポリシーを使用する。
// markdownの見出しや箇条書きはプレーンテキストとしてそのまま通過する。
package security

import "github.com/microcosm-cc/bluemonday"

// FeedbackSanitizerService はフィードバックサニタイズ機能のインターフェースを定義する。
// 評価結果の保存前に使用される。
type FeedbackSanitizerService interface {
	// Sanitize はフィードバックテキストをサニタイズして返す。
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// feedbackSanitizer はFeedbackSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type feedbackSanitizer struct {
	policy *bluemonday.Policy
}

// NewFeedbackSanitizer はFeedbackSanitizerServiceの新しいインスタンスを生成する。
// UGCPolicyをベースにする: ユーザー由来コンテンツ向けの許可リストで、
// 一般的な整形タグは通過させ、危険なタグ・属性は除去される。
func NewFeedbackSanitizer() *feedbackSanitizer {
	return &feedbackSanitizer{
		policy: bluemonday.UGCPolicy(),
	}
}

// Sanitize はフィードバックテキストをサニタイズして返す。
func (s *feedbackSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return s.policy.Sanitize(raw)
}

// compile-time interface check
var _ FeedbackSanitizerService = (*feedbackSanitizer)(nil)
