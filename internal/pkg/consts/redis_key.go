package consts

const (
	MetaAccessTokenKey    = "meta:token:"
	AccountTrend7DaysKey  = "insight:account:7days:"
	AccountTrend30DaysKey = "insight:account:30days:"
	PostTrend7DaysKey     = "insight:post:7days:"
	PostTrend30DaysKey    = "insight:post:30days:"
)

const (
	SyncRunLock = "lock:sync:"
)
