package security

import (
	"strings"
	"testing"
)

// scriptタグが除去されることを検証
func TestFeedbackSanitizer_RemovesScript(t *testing.T) {
	s := NewFeedbackSanitizer()

	out := s.Sanitize(`Good answer.<script>alert("xss")</script>`)
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag should be removed: %q", out)
	}
	if !strings.Contains(out, "Good answer.") {
		t.Errorf("plain text should survive: %q", out)
	}
}

// markdown形式のフィードバックが実質的に保持されることを検証
func TestFeedbackSanitizer_PreservesMarkdown(t *testing.T) {
	s := NewFeedbackSanitizer()

	in := "## Overall Assessment\n- Relevance: good\n- Depth: fine\n\nScore: 8/10"
	out := s.Sanitize(in)

	for _, want := range []string{"## Overall Assessment", "- Relevance: good", "Score: 8/10"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown content lost: missing %q in %q", want, out)
		}
	}
}

// イベント属性付きタグが無害化されることを検証
func TestFeedbackSanitizer_RemovesEventAttributes(t *testing.T) {
	s := NewFeedbackSanitizer()

	out := s.Sanitize(`<p onclick="steal()">text</p>`)
	if strings.Contains(out, "onclick") {
		t.Errorf("event attribute should be removed: %q", out)
	}
}

// 空入力に空出力、同一入力に同一出力（冪等）を検証
func TestFeedbackSanitizer_EmptyAndIdempotent(t *testing.T) {
	s := NewFeedbackSanitizer()

	if out := s.Sanitize(""); out != "" {
		t.Errorf("empty input should yield empty output, got %q", out)
	}

	in := `Solid answer with <em>emphasis</em>.`
	once := s.Sanitize(in)
	twice := s.Sanitize(once)
	if once != twice {
		t.Errorf("Sanitize is not idempotent: %q != %q", once, twice)
	}
}
