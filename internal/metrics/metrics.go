// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	questionsGenerated prometheus.Counter
	questionFailures   prometheus.Counter
	evaluations        *prometheus.CounterVec
	llmRequests        *prometheus.CounterVec
	llmLatency         prometheus.Histogram
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		questionsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interviewd_questions_generated_total",
			Help: "生成された面接質問の合計数",
		}),
		questionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interviewd_question_failures_total",
			Help: "質問生成失敗の合計数",
		}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewd_evaluations_total",
			Help: "回答評価の結果別合計数",
		}, []string{"outcome"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewd_llm_requests_total",
			Help: "言語モデル呼び出しの結果別合計数",
		}, []string{"outcome"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interviewd_llm_request_duration_seconds",
			Help:    "言語モデル呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interviewd_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.questionsGenerated,
		c.questionFailures,
		c.evaluations,
		c.llmRequests,
		c.llmLatency,
		c.httpStatus,
	)

	return c
}

// RecordQuestionGenerated は質問生成成功を記録する。
func (c *Collector) RecordQuestionGenerated() {
	c.questionsGenerated.Inc()
}

// RecordQuestionFailure は質問生成失敗を記録する。
func (c *Collector) RecordQuestionFailure() {
	c.questionFailures.Inc()
}

// RecordEvaluation は回答評価の結果を記録する。
func (c *Collector) RecordEvaluation(outcome string) {
	c.evaluations.WithLabelValues(outcome).Inc()
}

// RecordLLMRequest は言語モデル呼び出しの結果とレイテンシを記録する。
func (c *Collector) RecordLLMRequest(outcome string, duration time.Duration) {
	c.llmRequests.WithLabelValues(outcome).Inc()
	c.llmLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
