package dto

// MetricStatusDTO 单个指标的同步结果，Value 是上游最新累计值
type MetricStatusDTO struct {
	Name   string `json:"name"`
	Value  *int64 `json:"value"`
	Status string `json:"status"` // applied / skipped / failed
	Error  string `json:"error,omitempty"`
}

// AccountInsightsDTO 账号指标同步结果
type AccountInsightsDTO struct {
	AccountID  string             `json:"account_id"`
	Username   string             `json:"username"`
	MetricDate string             `json:"metric_date"`
	Metrics    []*MetricStatusDTO `json:"metrics"`
}

// BucketDTO 人群画像的一个桶
type BucketDTO struct {
	Label  string `json:"label"`
	Value  int64  `json:"value"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// DemographicsDTO 人群画像同步结果
type DemographicsDTO struct {
	AccountID          string       `json:"account_id"`
	MetricDate         string       `json:"metric_date"`
	AgeGroup           []*BucketDTO `json:"age_group"`
	GenderDistribution []*BucketDTO `json:"gender_distribution"`
	CityDistribution   []*BucketDTO `json:"city_distribution"`
}

// PostSyncDTO 单个帖子的同步结果
type PostSyncDTO struct {
	PostID      string             `json:"post_id"`
	MediaType   string             `json:"media_type"`
	MediaURL    string             `json:"media_url"`
	PostCreated string             `json:"post_created,omitempty"`
	Registered  bool               `json:"registered"` // 本次新登记
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
	Metrics     []*MetricStatusDTO `json:"metrics"`
}

// PostsSyncDTO 帖子同步结果
type PostsSyncDTO struct {
	AccountID  string         `json:"account_id"`
	MetricDate string         `json:"metric_date"`
	Total      int            `json:"total"`
	Failed     int            `json:"failed"`
	Posts      []*PostSyncDTO `json:"posts"`
}

// SyncRunDTO 完整同步的汇总，某一步失败时记录在 Errors 中并继续后续步骤
type SyncRunDTO struct {
	AccountID    string              `json:"account_id"`
	Insights     *AccountInsightsDTO `json:"insights"`
	Demographics *DemographicsDTO    `json:"demographics"`
	Posts        *PostsSyncDTO       `json:"posts"`
	Errors       map[string]string   `json:"errors,omitempty"`
}
