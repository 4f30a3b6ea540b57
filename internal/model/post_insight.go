package model

import "time"

// PostInsight 帖子每日增量指标
type PostInsight struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	PostsID    uint64    `gorm:"column:posts_id;not null;uniqueIndex:idx_post_insight_date,priority:1" json:"posts_id"`
	Reach      int64     `gorm:"not null;default:0" json:"reach"`
	Likes      int64     `gorm:"not null;default:0" json:"likes"`
	Saves      int64     `gorm:"not null;default:0" json:"saves"`
	MetricDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_post_insight_date,priority:2" json:"metric_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Post SocialPost `gorm:"foreignKey:PostsID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PostInsight) TableName() string {
	return "social_postinsights"
}
