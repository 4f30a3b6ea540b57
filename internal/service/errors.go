package service

import (
	"InsightLedger/internal/pkg/credential"
	"InsightLedger/internal/pkg/graph"
	"errors"
	"fmt"
	"net/http"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	BadGateway          = 502
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrAccountNotConfigured = errors.New("账号未配置")
	ErrParentNotFound       = errors.New("当天账号汇总不存在，请先同步账号指标")
	ErrPostNotFound         = errors.New("帖子不存在")
	ErrRunInProgress        = errors.New("该账号正在同步，请稍后重试")
	ErrUpstreamUnavailable  = errors.New("上游接口不可用")
	ErrPersistence          = errors.New("数据写入失败")
	UnauthorizedError       = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrAccountNotConfigured: NotFound,
	ErrParentNotFound:       NotFound,
	ErrPostNotFound:         NotFound,
	ErrRunInProgress:        Conflict,
	ErrUpstreamUnavailable:  BadGateway,
	ErrPersistence:          InternalServerError,
	UnauthorizedError:       Forbidden,
	UnExpectedError:         InternalServerError,
}

// UpstreamError 上游失败，保留上游的状态码和信息
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", ErrUpstreamUnavailable.Error(), e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamUnavailable
}

// ErrorCode 解析业务错误码，未知错误返回 false
func ErrorCode(err error) (int, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode, true
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return 0, false
}

func upstreamError(err error) error {
	var apiErr *graph.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	if errors.Is(err, credential.ErrNoCredential) {
		return &UpstreamError{StatusCode: http.StatusUnauthorized, Message: err.Error()}
	}
	return &UpstreamError{StatusCode: http.StatusBadGateway, Message: err.Error()}
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
