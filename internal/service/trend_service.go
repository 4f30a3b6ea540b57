package service

import (
	"InsightLedger/internal/api/dto"
	"InsightLedger/internal/model"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/util"
	"InsightLedger/internal/repository"
	"context"
	"encoding/csv"
	"io"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

type TrendService interface {
	// GetAccountTrend 最近 7 或 30 天的账号每日增量
	GetAccountTrend(ctx context.Context, accountID string, days int) (*dto.AccountTrendDTO, error)
	// GetPostTrend 最近 7 或 30 天的帖子每日增量
	GetPostTrend(ctx context.Context, accountID, postID string, days int) (*dto.PostTrendDTO, error)
	// ExportAccountCSV 以 CSV 导出账号每日增量
	ExportAccountCSV(ctx context.Context, accountID string, days int, w io.Writer) error
}

type trendServiceImpl struct {
	summaryRepo     repository.AccountSummaryRepo
	postRepo        repository.SocialPostRepo
	postInsightRepo repository.PostInsightRepo
	cache           Cache
	now             func() time.Time
}

func NewTrendService(
	summaryRepo repository.AccountSummaryRepo,
	postRepo repository.SocialPostRepo,
	postInsightRepo repository.PostInsightRepo,
	cache Cache,
) TrendService {
	return &trendServiceImpl{
		summaryRepo:     summaryRepo,
		postRepo:        postRepo,
		postInsightRepo: postInsightRepo,
		cache:           cache,
		now:             time.Now,
	}
}

func (s *trendServiceImpl) GetAccountTrend(ctx context.Context, accountID string, days int) (*dto.AccountTrendDTO, error) {
	key, err := trendKey(days, consts.AccountTrend7DaysKey, consts.AccountTrend30DaysKey, accountID)
	if err != nil {
		return nil, err
	}

	var trend dto.AccountTrendDTO
	if s.getCache(ctx, key, &trend) {
		return &trend, nil
	}

	list, err := s.accountDaily(ctx, accountID, days)
	if err != nil {
		return nil, err
	}
	trend = dto.AccountTrendDTO{AccountID: accountID, Days: days, List: list}
	s.setCache(ctx, key, &trend)
	return &trend, nil
}

func (s *trendServiceImpl) GetPostTrend(ctx context.Context, accountID, postID string, days int) (*dto.PostTrendDTO, error) {
	if days != consts.TrendDays7 && days != consts.TrendDays30 {
		return nil, ErrParamInvalid
	}
	post, err := s.postRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.AccountID != accountID {
		return nil, ErrPostNotFound
	}

	key, _ := trendKey(days, consts.PostTrend7DaysKey, consts.PostTrend30DaysKey, strconv.FormatUint(post.ID, 10))
	var trend dto.PostTrendDTO
	if s.getCache(ctx, key, &trend) {
		return &trend, nil
	}

	dates := util.LastDays(s.now(), days)
	insights, err := s.postInsightRepo.GetRange(ctx, post.ID, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*model.PostInsight, len(insights))
	for _, v := range insights {
		byDate[v.MetricDate.Format(time.DateOnly)] = v
	}

	list := make([]*dto.PostDailyDTO, 0, len(dates))
	for _, d := range dates {
		date := d.Format(time.DateOnly)
		item := &dto.PostDailyDTO{Date: date}
		if v, ok := byDate[date]; ok {
			_ = copier.Copy(item, v)
		}
		list = append(list, item)
	}

	trend = dto.PostTrendDTO{AccountID: accountID, PostID: postID, Days: days, List: list}
	s.setCache(ctx, key, &trend)
	return &trend, nil
}

func (s *trendServiceImpl) ExportAccountCSV(ctx context.Context, accountID string, days int, w io.Writer) error {
	if days != consts.TrendDays7 && days != consts.TrendDays30 {
		return ErrParamInvalid
	}
	list, err := s.accountDaily(ctx, accountID, days)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err = writer.Write([]string{"date", "followers", "impressions", "reach", "accounts_engaged", "website_clicks"}); err != nil {
		return err
	}
	for _, v := range list {
		row := []string{
			v.Date,
			strconv.FormatInt(v.Followers, 10),
			strconv.FormatInt(v.Impressions, 10),
			strconv.FormatInt(v.Reach, 10),
			strconv.FormatInt(v.AccountsEngaged, 10),
			strconv.FormatInt(v.WebsiteClicks, 10),
		}
		if err = writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// accountDaily 补齐没有记录的日期，增量记为 0
func (s *trendServiceImpl) accountDaily(ctx context.Context, accountID string, days int) ([]*dto.AccountDailyDTO, error) {
	dates := util.LastDays(s.now(), days)
	summaries, err := s.summaryRepo.GetRange(ctx, accountID, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*model.AccountSummary, len(summaries))
	for _, v := range summaries {
		byDate[v.MetricDate.Format(time.DateOnly)] = v
	}

	list := make([]*dto.AccountDailyDTO, 0, len(dates))
	for _, d := range dates {
		date := d.Format(time.DateOnly)
		item := &dto.AccountDailyDTO{Date: date}
		if v, ok := byDate[date]; ok {
			_ = copier.Copy(item, v)
		}
		list = append(list, item)
	}
	return list, nil
}

func (s *trendServiceImpl) getCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil || value == "" {
		return false
	}
	if err = json.Unmarshal([]byte(value), out); err != nil {
		log.WarnContext(ctx, "decode trend cache failed", "key", key, "err", err)
		return false
	}
	return true
}

// setCache 缓存到当天零点前 5 分钟
func (s *trendServiceImpl) setCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	expiration := util.UntilMidnight(s.now(), time.Minute*5)
	if expiration <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err = s.cache.Set(ctx, key, string(data), expiration); err != nil {
		log.WarnContext(ctx, "write trend cache failed", "key", key, "err", err)
	}
}

func trendKey(days int, key7, key30, id string) (string, error) {
	switch days {
	case consts.TrendDays7:
		return key7 + id, nil
	case consts.TrendDays30:
		return key30 + id, nil
	default:
		return "", ErrParamInvalid
	}
}
