package consts

// 同步任务类型，用于日志和完整同步的分步错误
const (
	RunKindInsights     = "insights"
	RunKindDemographics = "demographics"
	RunKindPosts        = "posts"
	RunKindFull         = "full"
)

const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
)

const (
	TrendDays7  = 7
	TrendDays30 = 30
)
