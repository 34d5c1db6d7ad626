// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/skillup/interviewd/internal/model"
)

// errorResponse はAPIエラーレスポンスの統一フォーマット。
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIError以外のエラーは詳細をログのみに記録し、一般的なメッセージを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr.Message)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeErrorResponse(w, http.StatusInternalServerError, "Internal server error")
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmptyTranscript, model.ErrCodeInvalidSession, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case model.ErrCodeAuthFailed:
		return http.StatusUnauthorized
	case model.ErrCodeDuplicateEmail:
		return http.StatusBadRequest
	case model.ErrCodeUpstreamFailure, model.ErrCodeUpstreamTimeout:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
