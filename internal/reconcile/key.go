package reconcile

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind 区分三类累计序列
type Kind uint8

const (
	KindSeries Kind = iota + 1
	KindDimension
	KindPostInsight
)

func (k Kind) String() string {
	switch k {
	case KindSeries:
		return "series"
	case KindDimension:
		return "dimension"
	case KindPostInsight:
		return "post_insight"
	default:
		return "unknown"
	}
}

// Metric 标量指标名
type Metric string

const (
	MetricFollowers       Metric = "followers"
	MetricImpressions     Metric = "impressions"
	MetricReach           Metric = "reach"
	MetricAccountsEngaged Metric = "accounts_engaged"
	MetricWebsiteClicks   Metric = "website_clicks"
	MetricLikes           Metric = "likes"
	MetricSaves           Metric = "saves"
)

// SeriesMetrics 账号汇总表上的指标，顺序即返回顺序
var SeriesMetrics = []Metric{
	MetricFollowers,
	MetricImpressions,
	MetricReach,
	MetricAccountsEngaged,
	MetricWebsiteClicks,
}

// PostMetrics 帖子洞察表上的指标
var PostMetrics = []Metric{
	MetricReach,
	MetricLikes,
	MetricSaves,
}

// Family 维度族，每个族独立一张表
type Family string

const (
	FamilyAge    Family = "age"
	FamilyGender Family = "gender"
	FamilyCity   Family = "city"
)

// Families 按同步顺序排列
var Families = []Family{FamilyAge, FamilyGender, FamilyCity}

var ErrInvalidKey = errors.New("invalid reconcile key")

// Key 一条累计序列的标识。只有与 Kind 对应的字段有意义
type Key struct {
	Kind      Kind
	AccountID string
	Metric    Metric
	Family    Family
	ParentID  uint64
	Label     string
}

// SeriesKey 账号级标量序列，如某账号的 followers
func SeriesKey(accountID string, metric Metric) Key {
	return Key{Kind: KindSeries, AccountID: accountID, Metric: metric}
}

// DimensionKey 维度桶，parentID 为当天账号汇总记录的 ID
func DimensionKey(family Family, parentID uint64, label string) Key {
	return Key{Kind: KindDimension, Family: family, ParentID: parentID, Label: label}
}

// PostInsightKey 帖子指标序列，postID 为本地帖子记录的 ID
func PostInsightKey(postID uint64, metric Metric) Key {
	return Key{Kind: KindPostInsight, ParentID: postID, Metric: metric}
}

func (k Key) Validate() error {
	switch k.Kind {
	case KindSeries:
		if k.AccountID == "" || !contains(SeriesMetrics, k.Metric) {
			return fmt.Errorf("%w: %s", ErrInvalidKey, k)
		}
	case KindDimension:
		if k.ParentID == 0 || k.Label == "" || !contains(Families, k.Family) {
			return fmt.Errorf("%w: %s", ErrInvalidKey, k)
		}
	case KindPostInsight:
		if k.ParentID == 0 || !contains(PostMetrics, k.Metric) {
			return fmt.Errorf("%w: %s", ErrInvalidKey, k)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidKey, k)
	}
	return nil
}

func (k Key) String() string {
	switch k.Kind {
	case KindSeries:
		return "series:" + k.AccountID + ":" + string(k.Metric)
	case KindDimension:
		return "dimension:" + string(k.Family) + ":" + strconv.FormatUint(k.ParentID, 10) + ":" + k.Label
	case KindPostInsight:
		return "post_insight:" + strconv.FormatUint(k.ParentID, 10) + ":" + string(k.Metric)
	default:
		return "unknown"
	}
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
