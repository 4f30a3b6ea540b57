package service

import (
	"InsightLedger/internal/api/dto"
	"InsightLedger/internal/pkg/graph"
	"InsightLedger/internal/pkg/util"
	"InsightLedger/internal/reconcile"
	"InsightLedger/internal/repository"
	"context"
	log "log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

var familyBreakdowns = map[reconcile.Family]graph.Breakdown{
	reconcile.FamilyAge:    graph.BreakdownAge,
	reconcile.FamilyGender: graph.BreakdownGender,
	reconcile.FamilyCity:   graph.BreakdownCity,
}

type AudienceService interface {
	// SyncDemographics 同步年龄、性别、城市三个维度的互动人群，依赖当天的账号汇总记录
	SyncDemographics(ctx context.Context, accountID string) (*dto.DemographicsDTO, error)
}

type audienceServiceImpl struct {
	fetcher     GraphFetcher
	creds       Credentials
	reconciler  *reconcile.Reconciler
	summaryRepo repository.AccountSummaryRepo
}

func NewAudienceService(
	fetcher GraphFetcher,
	creds Credentials,
	reconciler *reconcile.Reconciler,
	summaryRepo repository.AccountSummaryRepo,
) AudienceService {
	return &audienceServiceImpl{
		fetcher:     fetcher,
		creds:       creds,
		reconciler:  reconciler,
		summaryRepo: summaryRepo,
	}
}

func (s *audienceServiceImpl) SyncDemographics(ctx context.Context, accountID string) (*dto.DemographicsDTO, error) {
	token, err := resolveToken(ctx, s.creds, accountID)
	if err != nil {
		return nil, err
	}

	today := s.reconciler.Today()
	parent, err := s.summaryRepo.GetByDate(ctx, accountID, today)
	if err != nil {
		return nil, persistenceError(err)
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}
	// 桶记录与父记录同一天，即使同步过程中跨过零点
	day := util.GetMidnight(parent.MetricDate)

	buckets := make([][]graph.Bucket, len(reconcile.Families))
	g, gctx := errgroup.WithContext(ctx)
	for i, family := range reconcile.Families {
		g.Go(func() error {
			res, err := s.fetcher.GetDemographics(gctx, token, accountID, familyBreakdowns[family])
			if err != nil {
				return err
			}
			buckets[i] = res
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, upstreamError(err)
	}

	out := &dto.DemographicsDTO{
		AccountID:  accountID,
		MetricDate: day.Format(time.DateOnly),
	}
	failed := 0
	for i, family := range reconcile.Families {
		list := make([]*dto.BucketDTO, 0, len(buckets[i]))
		for _, b := range buckets[i] {
			res := s.reconciler.ReconcileOn(ctx, reconcile.DimensionKey(family, parent.ID, b.Label), day, util.PtrInt64(b.Value))
			item := &dto.BucketDTO{Label: b.Label, Value: b.Value, Status: string(res.Status)}
			if res.Err != nil {
				failed++
				log.ErrorContext(ctx, "reconcile bucket failed", "key", res.Key.String(), "err", res.Err)
				item.Error = ErrPersistence.Error()
			}
			list = append(list, item)
		}
		switch family {
		case reconcile.FamilyAge:
			out.AgeGroup = list
		case reconcile.FamilyGender:
			out.GenderDistribution = list
		case reconcile.FamilyCity:
			out.CityDistribution = list
		}
	}

	log.InfoContext(ctx, "demographics reconciled", "account_id", accountID,
		"age", len(out.AgeGroup), "gender", len(out.GenderDistribution), "city", len(out.CityDistribution), "failed", failed)
	return out, nil
}
