// Package http serves the tournament JSON API.
//
// This file implements the Builder Pattern for JSON responses. Every
// endpoint answers with the same envelope: {"success":true,"data":…} or
// {"success":false,"error":"…","details":[…]}.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"saishi/internal/core"
	"saishi/internal/log"
)

// Envelope is the wire shape of every JSON response.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	envelope   Envelope
	headers    map[string]string
}

// NewJSONResponse creates a successful response builder with 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		envelope:   Envelope{Success: true},
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Data(data any) *JSONResponseBuilder {
	b.envelope.Data = data
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Fail turns the response into an error envelope.
func (b *JSONResponseBuilder) Fail(message string, details ...string) *JSONResponseBuilder {
	b.envelope.Success = false
	b.envelope.Data = nil
	b.envelope.Error = message
	b.envelope.Details = details
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.envelope)
}

// ErrorResponse creates an error envelope with the given status.
func ErrorResponse(statusCode int, message string, details ...string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Fail(message, details...)
}

func BadRequestError(message string, details ...string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message, details...)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func ServiceUnavailableError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// Messages shown to clients. Internal error text is logged, never returned.
const (
	MsgNotFound           = "比赛记录不存在"
	MsgStoreUnavailable   = "数据存储暂时不可用"
	MsgInternal           = "服务器内部错误"
	MsgInvalidBody        = "请求格式无效"
	MsgRateLimited        = "请求过于频繁，请稍后再试"
	MsgMissingYearMonth   = "缺少年份或月份参数"
	MsgInvalidDateParam   = "日期格式无效，应为YYYY-MM-DD"
	MsgInvalidBoolParam   = "布尔参数无效，应为true或false"
	MsgUnknownSummaryKind = "未知的统计类型"
)

// ErrorFor maps the domain error taxonomy to a response: validation
// failures are 400, missing records 404, an unreachable store 503 and
// anything else 500.
func ErrorFor(err error) *JSONResponseBuilder {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return BadRequestError(strings.Join(ve.Problems, "; "), ve.Problems...)
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(MsgNotFound)
	case errors.Is(err, core.ErrStoreUnavailable):
		return ServiceUnavailableError(MsgStoreUnavailable)
	default:
		return InternalServerError(MsgInternal)
	}
}

// writeError logs err at a level matching its class and writes the
// mapped response.
func writeError(ctx context.Context, w http.ResponseWriter, err error, operation string) {
	logger := log.FromContext(ctx)
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.WarnContext(ctx, "Rejected invalid input",
			log.FieldOperation, operation,
			"error_type", log.ErrorTypeValidation,
			"problems", ve.Problems)
	case errors.Is(err, core.ErrNotFound):
		logger.InfoContext(ctx, "Record not found",
			log.FieldOperation, operation,
			"error_type", log.ErrorTypeNotFound)
	default:
		errorType := log.ErrorTypeInternal
		if errors.Is(err, core.ErrStoreUnavailable) || errors.Is(err, core.ErrData) {
			errorType = log.ErrorTypeDatabase
		}
		logger.LogError(ctx, "Request failed", err, operation, log.Fields{"error_type": errorType})
	}
	ErrorFor(err).Write(w)
}
