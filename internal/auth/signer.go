package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// CookieSigner はセッションIDのCookie値に対するHMAC署名を提供する。
// Cookie値は「<sessionID>.<署名>」形式で、改ざんされた値は検証で拒否される。
// セッション本体はサーバーサイドに保存されるため、署名は改ざん検知のみを担う。
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner はCookieSignerを生成する。
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Sign はセッションIDに署名を付与したCookie値を返す。
func (s *CookieSigner) Sign(sessionID string) string {
	return sessionID + "." + s.signature(sessionID)
}

// Verify はCookie値の署名を検証し、セッションIDを取り出す。
// 形式不正または署名不一致の場合はエラーを返す。
func (s *CookieSigner) Verify(value string) (string, error) {
	sessionID, sig, ok := strings.Cut(value, ".")
	if !ok || sessionID == "" {
		return "", fmt.Errorf("malformed session cookie")
	}

	expected := s.signature(sessionID)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", fmt.Errorf("session cookie signature mismatch")
	}

	return sessionID, nil
}

// signature はセッションIDのHMAC-SHA256署名を計算する。
func (s *CookieSigner) signature(sessionID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
