package service

import (
	"InsightLedger/internal/api/dto"
	"InsightLedger/internal/model"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/graph"
	"InsightLedger/internal/reconcile"
	"InsightLedger/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

type PostInsightService interface {
	// SyncPosts 拉全所有分页后登记帖子并对账每个帖子的 reach/likes/saves；
	// ctx 中途取消时同时返回已处理的结果和错误
	SyncPosts(ctx context.Context, accountID string) (*dto.PostsSyncDTO, error)
}

type postInsightServiceImpl struct {
	fetcher    GraphFetcher
	creds      Credentials
	reconciler *reconcile.Reconciler
	postRepo   repository.SocialPostRepo
	cache      Cache
}

func NewPostInsightService(
	fetcher GraphFetcher,
	creds Credentials,
	reconciler *reconcile.Reconciler,
	postRepo repository.SocialPostRepo,
	cache Cache,
) PostInsightService {
	return &postInsightServiceImpl{
		fetcher:    fetcher,
		creds:      creds,
		reconciler: reconciler,
		postRepo:   postRepo,
		cache:      cache,
	}
}

func (s *postInsightServiceImpl) SyncPosts(ctx context.Context, accountID string) (*dto.PostsSyncDTO, error) {
	token, err := resolveToken(ctx, s.creds, accountID)
	if err != nil {
		return nil, err
	}

	media, err := s.fetcher.ListMedia(ctx, token, accountID)
	if err != nil {
		return nil, upstreamError(err)
	}

	out := &dto.PostsSyncDTO{
		AccountID:  accountID,
		MetricDate: s.reconciler.Today().Format(time.DateOnly),
		Total:      len(media),
		Posts:      make([]*dto.PostSyncDTO, 0, len(media)),
	}
	for i, m := range media {
		if err = ctx.Err(); err != nil {
			// 已提交的帖子照常返回，剩余的标记为失败
			for _, rest := range media[i:] {
				out.Posts = append(out.Posts, &dto.PostSyncDTO{
					PostID:    rest.ID,
					MediaType: rest.MediaType,
					MediaURL:  rest.MediaURL,
					Status:    string(reconcile.StatusFailed),
					Error:     err.Error(),
					Metrics:   []*dto.MetricStatusDTO{},
				})
				out.Failed++
			}
			log.WarnContext(ctx, "posts sync interrupted", "account_id", accountID,
				"done", i, "total", out.Total, "err", err)
			return out, err
		}
		item := s.syncPost(ctx, token, accountID, m)
		if item.Status == string(reconcile.StatusFailed) {
			out.Failed++
		}
		out.Posts = append(out.Posts, item)
	}

	log.InfoContext(ctx, "posts reconciled", "account_id", accountID, "total", out.Total, "failed", out.Failed)
	return out, nil
}

// syncPost 单个帖子失败只标记该帖子，不影响其他帖子
func (s *postInsightServiceImpl) syncPost(ctx context.Context, token, accountID string, m graph.Media) *dto.PostSyncDTO {
	item := &dto.PostSyncDTO{
		PostID:    m.ID,
		MediaType: m.MediaType,
		MediaURL:  m.MediaURL,
		Metrics:   make([]*dto.MetricStatusDTO, 0, len(reconcile.PostMetrics)),
	}

	post, created, err := s.postRepo.Register(ctx, &model.SocialPost{
		AccountID:   accountID,
		PostID:      m.ID,
		MediaType:   m.MediaType,
		MediaURL:    m.MediaURL,
		PostCreated: m.CreatedDate(),
	})
	if err != nil {
		log.ErrorContext(ctx, "register post failed", "post_id", m.ID, "err", err)
		item.Status = string(reconcile.StatusFailed)
		item.Error = ErrPersistence.Error()
		return item
	}
	// 返回的是首次登记时的元数据
	item.Registered = created
	item.MediaType = post.MediaType
	item.MediaURL = post.MediaURL
	if post.PostCreated != nil {
		item.PostCreated = post.PostCreated.Format(time.DateOnly)
	}

	metrics, err := s.fetcher.GetMediaMetrics(ctx, token, m.ID)
	if err != nil {
		log.WarnContext(ctx, "fetch post metrics failed", "post_id", m.ID, "err", err)
		item.Status = string(reconcile.StatusFailed)
		item.Error = upstreamError(err).Error()
		return item
	}

	values := map[reconcile.Metric]*int64{
		reconcile.MetricReach: metrics.Reach,
		reconcile.MetricLikes: metrics.Likes,
		reconcile.MetricSaves: metrics.Saves,
	}
	observations := make([]reconcile.Observation, 0, len(reconcile.PostMetrics))
	for _, metric := range reconcile.PostMetrics {
		observations = append(observations, reconcile.Observation{
			Key:   reconcile.PostInsightKey(post.ID, metric),
			Value: values[metric],
		})
	}

	item.Status = string(reconcile.StatusSkipped)
	for _, res := range s.reconciler.ReconcileAll(ctx, observations) {
		switch {
		case res.Status == reconcile.StatusFailed:
			item.Status = string(reconcile.StatusFailed)
		case res.Status == reconcile.StatusApplied && item.Status == string(reconcile.StatusSkipped):
			item.Status = string(reconcile.StatusApplied)
		}
		item.Metrics = append(item.Metrics, metricStatus(ctx, string(res.Key.Metric), res))
	}

	id := strconv.FormatUint(post.ID, 10)
	invalidate(ctx, s.cache, consts.PostTrend7DaysKey+id, consts.PostTrend30DaysKey+id)
	return item
}
