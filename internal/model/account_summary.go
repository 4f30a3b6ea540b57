package model

import "time"

// AccountSummary 账号维度的每日增量，每个指标列都是一条独立的累计序列
type AccountSummary struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	AccountID       string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_account_date,priority:1" json:"account_id"`
	Username        string    `gorm:"type:varchar(255);not null;default:''" json:"username"`
	Followers       int64     `gorm:"not null;default:0" json:"followers"`
	Impressions     int64     `gorm:"not null;default:0" json:"impressions"`
	Reach           int64     `gorm:"not null;default:0" json:"reach"`
	AccountsEngaged int64     `gorm:"not null;default:0" json:"accounts_engaged"`
	WebsiteClicks   int64     `gorm:"not null;default:0" json:"website_clicks"`
	MetricDate      time.Time `gorm:"type:date;not null;uniqueIndex:idx_account_date,priority:2" json:"metric_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (AccountSummary) TableName() string {
	return "social_profile"
}
