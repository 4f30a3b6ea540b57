package logger

import (
	log "log/slog"
	"net/http"
	"net/url"
	"time"
)

// UpstreamTransport 记录对上游 API 的每次请求，URL 中的 access_token 等敏感参数会被隐藏
type UpstreamTransport struct {
	Transport     http.RoundTripper
	Name          string
	SlowThreshold time.Duration
}

var sensitiveParams = []string{"access_token", "client_secret", "fb_exchange_token"}

func NewUpstreamTransport(name string) *UpstreamTransport {
	return &UpstreamTransport{
		Transport:     http.DefaultTransport,
		Name:          name,
		SlowThreshold: 2 * time.Second,
	}
}

func (t *UpstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("upstream", t.Name),
		log.String("method", req.Method),
		log.String("url", RedactURL(req.URL)),
		log.Duration("latency", elapsed),
	}

	if err != nil {
		log.ErrorContext(req.Context(), "UPSTREAM_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	fields = append(fields, log.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode >= http.StatusBadRequest:
		log.WarnContext(req.Context(), "UPSTREAM_FAILED", fields...)
	case elapsed > t.SlowThreshold:
		log.WarnContext(req.Context(), "UPSTREAM_SLOW", fields...)
	default:
		log.InfoContext(req.Context(), "UPSTREAM", fields...)
	}
	return resp, nil
}

// RedactURL 返回隐藏了凭据参数的 URL
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	query := u.Query()
	changed := false
	for _, p := range sensitiveParams {
		if query.Has(p) {
			query.Set(p, "***")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	clone := *u
	clone.RawQuery = query.Encode()
	return clone.String()
}
