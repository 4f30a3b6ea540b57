package model

// All 需要自动迁移的表，父表在前
func All() []any {
	return []any{
		&AccountSummary{},
		&EngagedAudienceAge{},
		&EngagedAudienceGender{},
		&EngagedAudienceLocation{},
		&SocialPost{},
		&PostInsight{},
	}
}
