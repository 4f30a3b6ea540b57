package graph

import (
	"context"
	log "log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

const demographicsMetric = "engaged_audience_demographics"

// CircuitOpenMessage 熔断打开时返回的错误信息
const CircuitOpenMessage = "graph api circuit open"

// Config 客户端配置
type Config struct {
	BaseURL         string
	OAuthURL        string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerOpen     time.Duration
	PageLimit       int
	MaxPages        int
	Timeframe       string
	// Transport 为空时使用默认传输
	Transport http.RoundTripper
}

// Client Graph API 客户端。token 由调用方按次传入，客户端本身不持有凭据
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	cfg     Config
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpen <= 0 {
		cfg.BreakerOpen = time.Minute
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = "this_week"
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.Transport != nil {
		httpClient.SetTransport(cfg.Transport)
	}

	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:    "graph-api",
		Timeout: cfg.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Graph API circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		cfg:     cfg,
	}
}

// GetAccount 获取账号基础信息与粉丝数
func (c *Client) GetAccount(ctx context.Context, token, accountID string) (*Account, error) {
	var account Account
	err := c.getJSON(ctx, token, "/"+accountID, map[string]string{
		"fields": "id,username,followers_count",
	}, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountInsights 获取账号级指标的 total_value，上游未返回的指标不会出现在结果里
func (c *Client) GetAccountInsights(ctx context.Context, token, accountID string, metrics []string) (map[string]int64, error) {
	var resp insightsResponse
	err := c.getJSON(ctx, token, "/"+accountID+"/insights", map[string]string{
		"metric":      strings.Join(metrics, ","),
		"period":      "day",
		"metric_type": "total_value",
	}, &resp)
	if err != nil {
		return nil, err
	}

	values := make(map[string]int64, len(metrics))
	for _, item := range resp.Data {
		if item.TotalValue == nil || item.TotalValue.Value == nil {
			continue
		}
		values[item.Name] = *item.TotalValue.Value
	}
	return values, nil
}

// GetDemographics 获取互动人群在某个维度上的分布
func (c *Client) GetDemographics(ctx context.Context, token, accountID string, by Breakdown) ([]Bucket, error) {
	var resp insightsResponse
	err := c.getJSON(ctx, token, "/"+accountID+"/insights", map[string]string{
		"metric":      demographicsMetric,
		"period":      "lifetime",
		"timeframe":   c.cfg.Timeframe,
		"metric_type": "total_value",
		"breakdown":   string(by),
	}, &resp)
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0)
	seen := make(map[string]int)
	for _, item := range resp.Data {
		if item.Name != demographicsMetric || item.TotalValue == nil {
			continue
		}
		for _, b := range item.TotalValue.Breakdowns {
			for _, result := range b.Results {
				if len(result.DimensionValues) == 0 || result.Value == nil {
					continue
				}
				label := result.DimensionValues[0]
				if idx, ok := seen[label]; ok {
					buckets[idx].Value = *result.Value
					continue
				}
				seen[label] = len(buckets)
				buckets = append(buckets, Bucket{Label: label, Value: *result.Value})
			}
		}
	}
	return buckets, nil
}

// ListMedia 沿 paging.next 拉取全部帖子，全部页成功后才返回；重复出现的帖子只保留第一次
func (c *Client) ListMedia(ctx context.Context, token, accountID string) ([]Media, error) {
	params := map[string]string{
		"fields": "id,media_type,media_url,timestamp",
	}
	if c.cfg.PageLimit > 0 {
		params["limit"] = strconv.Itoa(c.cfg.PageLimit)
	}

	var page mediaPage
	if err := c.getJSON(ctx, token, "/"+accountID+"/media", params, &page); err != nil {
		return nil, err
	}

	all := make([]Media, 0, len(page.Data))
	seen := make(map[string]struct{})
	visited := make(map[string]struct{})
	for pages := 1; ; pages++ {
		for _, m := range page.Data {
			if m.ID == "" {
				continue
			}
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			all = append(all, m)
		}

		next := page.Paging.Next
		if next == "" {
			break
		}
		if _, ok := visited[next]; ok {
			log.WarnContext(ctx, "media paging cursor repeated, stop paging", "account_id", accountID)
			break
		}
		if pages >= c.cfg.MaxPages {
			return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "media listing exceeded max pages"}
		}
		visited[next] = struct{}{}

		page = mediaPage{}
		// next 已经带上了 access_token 和游标
		if err := c.getJSON(ctx, "", next, nil, &page); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// GetMediaMetrics 获取帖子的点赞、触达和收藏累计值
func (c *Client) GetMediaMetrics(ctx context.Context, token, mediaID string) (*MediaMetrics, error) {
	var likes struct {
		LikeCount *int64 `json:"like_count"`
	}
	if err := c.getJSON(ctx, token, "/"+mediaID, map[string]string{"fields": "like_count"}, &likes); err != nil {
		return nil, err
	}

	var resp insightsResponse
	if err := c.getJSON(ctx, token, "/"+mediaID+"/insights", map[string]string{"metric": "reach,saved"}, &resp); err != nil {
		return nil, err
	}

	metrics := &MediaMetrics{Likes: likes.LikeCount}
	for _, item := range resp.Data {
		var v *int64
		if len(item.Values) > 0 {
			v = item.Values[0].Value
		} else if item.TotalValue != nil {
			v = item.TotalValue.Value
		}
		switch item.Name {
		case "reach":
			metrics.Reach = v
		case "saved":
			metrics.Saves = v
		}
	}
	return metrics, nil
}

// CheckToken 用最轻的请求探测 token 是否仍然有效
func (c *Client) CheckToken(ctx context.Context, token, accountID string) (bool, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.getJSON(ctx, token, "/"+accountID, map[string]string{"fields": "id"}, &out)
	if err == nil {
		return true, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
		return false, nil
	}
	return false, err
}

// ExchangeToken 用 fb_exchange_token 换取新的长期 token
func (c *Client) ExchangeToken(ctx context.Context, appID, appSecret, token string) (*Token, error) {
	var out Token
	err := c.getJSON(ctx, "", c.cfg.OAuthURL, map[string]string{
		"grant_type":        "fb_exchange_token",
		"client_id":         appID,
		"client_secret":     appSecret,
		"fb_exchange_token": token,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "token exchange returned no access_token"}
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, params map[string]string, out any) error {
	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if params != nil {
			req.SetQueryParams(params)
		}
		if token != "" {
			req.SetQueryParam("access_token", token)
		}
		resp, err := req.Get(path)
		if err != nil {
			return nil, errors.Wrapf(err, "GET %s", redact(path))
		}
		if resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests {
			return resp, &APIError{StatusCode: resp.StatusCode(), Message: errorMessage(resp)}
		}
		return resp, nil
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &APIError{StatusCode: http.StatusServiceUnavailable, Message: CircuitOpenMessage}
		}
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		return &APIError{StatusCode: status, Message: err.Error()}
	}

	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode(), Message: errorMessage(resp)}
	}
	if err = json.Unmarshal(resp.Body(), out); err != nil {
		return &APIError{
			StatusCode: http.StatusBadGateway,
			Message:    errors.Wrapf(err, "malformed payload from %s", redact(path)).Error(),
		}
	}
	return nil
}

func errorMessage(resp *resty.Response) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	body := string(resp.Body())
	if len(body) > 512 {
		body = body[:512]
	}
	if body == "" {
		return resp.Status()
	}
	return body
}

// redact 去掉 URL 里的 access_token，避免写进日志
func redact(path string) string {
	idx := strings.Index(path, "access_token=")
	if idx < 0 {
		return path
	}
	end := strings.IndexByte(path[idx:], '&')
	if end < 0 {
		return path[:idx] + "access_token=***"
	}
	return path[:idx] + "access_token=***" + path[idx+end:]
}
