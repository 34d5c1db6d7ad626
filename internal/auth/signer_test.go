package auth

import "testing"

// 署名と検証のラウンドトリップを検証
func TestCookieSigner_SignVerify(t *testing.T) {
	signer := NewCookieSigner("test-secret")

	value := signer.Sign("sess-123")
	got, err := signer.Verify(value)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if got != "sess-123" {
		t.Errorf("session ID = %q, want sess-123", got)
	}
}

// 改ざんされた値が拒否されることを検証
func TestCookieSigner_RejectsTampered(t *testing.T) {
	signer := NewCookieSigner("test-secret")

	value := signer.Sign("sess-123")
	tampered := "sess-456" + value[len("sess-123"):]

	if _, err := signer.Verify(tampered); err == nil {
		t.Error("expected error for tampered cookie value")
	}
}

// 異なるシークレットで署名された値が拒否されることを検証
func TestCookieSigner_RejectsForeignSecret(t *testing.T) {
	signer := NewCookieSigner("secret-a")
	other := NewCookieSigner("secret-b")

	value := other.Sign("sess-123")
	if _, err := signer.Verify(value); err == nil {
		t.Error("expected error for foreign signature")
	}
}

// 形式不正な値が拒否されることを検証
func TestCookieSigner_RejectsMalformed(t *testing.T) {
	signer := NewCookieSigner("test-secret")

	for _, value := range []string{"", "no-separator", ".only-sig"} {
		if _, err := signer.Verify(value); err == nil {
			t.Errorf("expected error for malformed value %q", value)
		}
	}
}
