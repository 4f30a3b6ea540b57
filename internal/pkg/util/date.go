package util

import "time"

// GetMidnight 返回 t 所在 UTC 自然日的零点，所有按天统计的记录都以此为日期键
func GetMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UntilMidnight 距离下一个 UTC 零点的时长，减去 margin，用于缓存过期
func UntilMidnight(now time.Time, margin time.Duration) time.Duration {
	next := GetMidnight(now).AddDate(0, 0, 1)
	return next.Sub(now.UTC()) - margin
}

// LastDays 返回以 today 结尾的连续 days 个自然日，按时间升序
func LastDays(today time.Time, days int) []time.Time {
	today = GetMidnight(today)
	out := make([]time.Time, 0, days)
	for i := days - 1; i >= 0; i-- {
		out = append(out, today.AddDate(0, 0, -i))
	}
	return out
}
