package graph

import (
	"fmt"
	"time"
)

// Account /{ig-user-id}?fields=id,username,followers_count
type Account struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FollowersCount *int64 `json:"followers_count"`
}

type insightsResponse struct {
	Data []insightItem `json:"data"`
}

type insightItem struct {
	Name       string         `json:"name"`
	Period     string         `json:"period"`
	Values     []insightValue `json:"values"`
	TotalValue *insightTotal  `json:"total_value"`
}

type insightValue struct {
	Value   *int64 `json:"value"`
	EndTime string `json:"end_time"`
}

type insightTotal struct {
	Value      *int64      `json:"value"`
	Breakdowns []breakdown `json:"breakdowns"`
}

type breakdown struct {
	DimensionKeys []string          `json:"dimension_keys"`
	Results       []breakdownResult `json:"results"`
}

type breakdownResult struct {
	DimensionValues []string `json:"dimension_values"`
	Value           *int64   `json:"value"`
}

// Breakdown 人群画像拆分维度
type Breakdown string

const (
	BreakdownAge    Breakdown = "age"
	BreakdownGender Breakdown = "gender"
	BreakdownCity   Breakdown = "city"
)

// Bucket 某个维度桶的累计值
type Bucket struct {
	Label string
	Value int64
}

// Media /{ig-user-id}/media 列表项
type Media struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Timestamp string `json:"timestamp"`
}

// CreatedDate 解析发布时间，只保留 UTC 日期；格式不对时返回 nil
func (m Media) CreatedDate() *time.Time {
	if m.Timestamp == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02T15:04:05-0700", m.Timestamp)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, m.Timestamp); err != nil {
			return nil
		}
	}
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

type mediaPage struct {
	Data   []Media `json:"data"`
	Paging struct {
		Next    string `json:"next"`
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
	} `json:"paging"`
}

// MediaMetrics 帖子累计指标，nil 表示上游未返回
type MediaMetrics struct {
	Likes *int64
	Reach *int64
	Saves *int64
}

// Token fb_exchange_token 的返回
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// APIError 上游返回非 2xx 或者响应无法解析
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error (status %d): %s", e.StatusCode, e.Message)
}
