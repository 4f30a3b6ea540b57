package repository

import (
	"InsightLedger/internal/model"
	"context"

	"gorm.io/gorm"
)

// AudienceBuckets 某条汇总记录下三个维度族的桶
type AudienceBuckets struct {
	Ages      []*model.EngagedAudienceAge
	Genders   []*model.EngagedAudienceGender
	Locations []*model.EngagedAudienceLocation
}

type AudienceRepo interface {
	GetBuckets(ctx context.Context, socialMediaID uint64) (*AudienceBuckets, error)
}

type audienceRepoImpl struct {
	db *gorm.DB
}

func NewAudienceRepository(db *gorm.DB) AudienceRepo {
	return &audienceRepoImpl{db: db}
}

func (s *audienceRepoImpl) GetBuckets(ctx context.Context, socialMediaID uint64) (*AudienceBuckets, error) {
	buckets := &AudienceBuckets{
		Ages:      make([]*model.EngagedAudienceAge, 0),
		Genders:   make([]*model.EngagedAudienceGender, 0),
		Locations: make([]*model.EngagedAudienceLocation, 0),
	}
	db := s.db.WithContext(ctx)
	if err := db.Where("socialmedia_id = ?", socialMediaID).Order("age_group ASC").Find(&buckets.Ages).Error; err != nil {
		return nil, err
	}
	if err := db.Where("socialmedia_id = ?", socialMediaID).Order("gender ASC").Find(&buckets.Genders).Error; err != nil {
		return nil, err
	}
	if err := db.Where("socialmedia_id = ?", socialMediaID).Order("count DESC, city ASC").Find(&buckets.Locations).Error; err != nil {
		return nil, err
	}
	return buckets, nil
}
