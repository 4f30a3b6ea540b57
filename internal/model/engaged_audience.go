package model

import "time"

// EngagedAudienceAge 年龄段维度的每日互动增量
type EngagedAudienceAge struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	SocialMediaID uint64    `gorm:"column:socialmedia_id;not null;uniqueIndex:idx_age_bucket_date,priority:1" json:"socialmedia_id"`
	AgeGroup      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_age_bucket_date,priority:2" json:"age_group"`
	Count         int64     `gorm:"not null;default:0" json:"count"`
	MetricDate    time.Time `gorm:"type:date;not null;uniqueIndex:idx_age_bucket_date,priority:3" json:"metric_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	SocialProfile AccountSummary `gorm:"foreignKey:SocialMediaID;references:ID" json:"-"`
}

func (EngagedAudienceAge) TableName() string {
	return "social_engaged_audience_age"
}

// EngagedAudienceGender 性别维度的每日互动增量
type EngagedAudienceGender struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	SocialMediaID uint64    `gorm:"column:socialmedia_id;not null;uniqueIndex:idx_gender_bucket_date,priority:1" json:"socialmedia_id"`
	Gender        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_gender_bucket_date,priority:2" json:"gender"`
	Count         int64     `gorm:"not null;default:0" json:"count"`
	MetricDate    time.Time `gorm:"type:date;not null;uniqueIndex:idx_gender_bucket_date,priority:3" json:"metric_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	SocialProfile AccountSummary `gorm:"foreignKey:SocialMediaID;references:ID" json:"-"`
}

func (EngagedAudienceGender) TableName() string {
	return "social_engaged_audience_gender"
}

// EngagedAudienceLocation 城市维度的每日互动增量
type EngagedAudienceLocation struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	SocialMediaID uint64    `gorm:"column:socialmedia_id;not null;uniqueIndex:idx_city_bucket_date,priority:1" json:"socialmedia_id"`
	City          string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_city_bucket_date,priority:2" json:"city"`
	Count         int64     `gorm:"not null;default:0" json:"count"`
	MetricDate    time.Time `gorm:"type:date;not null;uniqueIndex:idx_city_bucket_date,priority:3" json:"metric_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	SocialProfile AccountSummary `gorm:"foreignKey:SocialMediaID;references:ID" json:"-"`
}

func (EngagedAudienceLocation) TableName() string {
	return "social_engaged_audience_location"
}
