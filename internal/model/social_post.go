package model

import "time"

// SocialPost 上游发现的帖子，首次登记后元数据不再修改
type SocialPost struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	AccountID   string     `gorm:"type:varchar(64);not null;index:idx_post_account" json:"account_id"`
	PostID      string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_external_post" json:"post_id"`
	MediaType   string     `gorm:"type:varchar(50)" json:"media_type"`
	MediaURL    string     `gorm:"type:text" json:"media_url"`
	PostCreated *time.Time `gorm:"type:date" json:"post_created"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (SocialPost) TableName() string {
	return "social_posts"
}
