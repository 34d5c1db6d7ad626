// Package llm はホスト型言語モデルへの呼び出し境界を提供する。
// Groqのチャット補完API（OpenAI互換ワイヤフォーマット）に対する
// 同期的な1往復の呼び出しのみを扱い、ストリーミングやリトライは行わない。
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// defaultBaseURL はGroqのOpenAI互換APIのベースURL。
	defaultBaseURL = "https://api.groq.com/openai/v1"
	// defaultModel は使用する固定のモデル識別子。
	defaultModel = "llama-3.1-8b-instant"
	// defaultTemperature は固定のサンプリング温度。
	defaultTemperature = 0.7
	// defaultTimeout は1回の呼び出しに対する明示的なタイムアウト。
	defaultTimeout = 60 * time.Second
)

// ErrTimeout はモデル呼び出しがタイムアウトしたことを表す。
// その他の上流失敗とは区別して扱う。
var ErrTimeout = errors.New("llm: request timed out")

// Invoker は言語モデル呼び出しのインターフェース。
// プロンプトを送信し、正規化済みのプレーンテキストを受け取る。
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Config はクライアントの設定。
type Config struct {
	APIKey      string
	BaseURL     string        // 未設定時はGroqの既定エンドポイント
	Model       string        // 未設定時はllama-3.1-8b-instant
	Temperature float64       // 未設定時（0）は0.7
	Timeout     time.Duration // 未設定時は60秒
}

// Client はGroqチャット補完APIのクライアント。
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// 未設定の項目にはデフォルト値を適用する。
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:   logger,
		endpoint: strings.TrimSuffix(config.BaseURL, "/") + "/chat/completions",
	}
}

// chatCompletionRequest はチャット補完APIのリクエストボディ。
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// chatMessage はチャットメッセージを表す。
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse はチャット補完APIのレスポンスボディ。
type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Invoke はプロンプトを送信し、モデルの応答をプレーンテキストとして返す。
// 応答が主たるテキストペイロードを持つ場合はそれを抽出し、
// 持たない場合はレスポンス全体をテキストとして扱う。
// タイムアウト時はErrTimeoutを返す。
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatCompletionRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("model invocation timed out",
				slog.String("model", c.config.Model),
				slog.Duration("timeout", c.config.Timeout),
			)
			return "", ErrTimeout
		}
		c.logger.Error("model invocation failed",
			slog.String("model", c.config.Model),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("model invocation failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Info("model invocation completed",
		slog.String("model", c.config.Model),
		slog.Int("http_status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model API returned status %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		// JSONとして解析できない応答はそのままテキストとして扱う
		return strings.TrimSpace(string(body)), nil
	}

	if completion.Error != nil {
		return "", fmt.Errorf("model API error: %s", completion.Error.Message)
	}

	// 主たるテキストペイロードの抽出。
	// choicesが空、またはcontentが空の場合はレスポンス全体をテキスト化する。
	if len(completion.Choices) > 0 && completion.Choices[0].Message.Content != "" {
		return completion.Choices[0].Message.Content, nil
	}

	return strings.TrimSpace(string(body)), nil
}

// isTimeout はエラーがタイムアウト起因かどうかを判定する。
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

// truncate はログおよびエラーメッセージ向けに文字列を切り詰める。
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// compile-time interface check
var _ Invoker = (*Client)(nil)
