package dto

// TrendQueryDTO 趋势查询参数
type TrendQueryDTO struct {
	Days int `form:"days" validate:"oneof=7 30"`
}

// AccountDailyDTO 账号某天的增量
type AccountDailyDTO struct {
	Date            string `json:"date"` // 2026-01-07
	Followers       int64  `json:"followers"`
	Impressions     int64  `json:"impressions"`
	Reach           int64  `json:"reach"`
	AccountsEngaged int64  `json:"accounts_engaged"`
	WebsiteClicks   int64  `json:"website_clicks"`
}

// AccountTrendDTO 账号趋势，没有记录的日期增量为 0
type AccountTrendDTO struct {
	AccountID string             `json:"account_id"`
	Days      int                `json:"days"`
	List      []*AccountDailyDTO `json:"list"`
}

// PostDailyDTO 帖子某天的增量
type PostDailyDTO struct {
	Date  string `json:"date"`
	Reach int64  `json:"reach"`
	Likes int64  `json:"likes"`
	Saves int64  `json:"saves"`
}

// PostTrendDTO 帖子趋势
type PostTrendDTO struct {
	AccountID string          `json:"account_id"`
	PostID    string          `json:"post_id"`
	Days      int             `json:"days"`
	List      []*PostDailyDTO `json:"list"`
}
