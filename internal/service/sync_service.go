package service

import (
	"InsightLedger/internal/api/dto"
	"InsightLedger/internal/pkg/consts"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

type SyncService interface {
	SyncInsights(ctx context.Context, accountID string) (*dto.AccountInsightsDTO, error)
	SyncDemographics(ctx context.Context, accountID string) (*dto.DemographicsDTO, error)
	SyncPosts(ctx context.Context, accountID string) (*dto.PostsSyncDTO, error)
	// SyncAll 按账号指标、人群画像、帖子的顺序完整同步一次，某一步失败会记录后继续
	SyncAll(ctx context.Context, accountID string) (*dto.SyncRunDTO, error)
	Accounts() []string
}

type syncServiceImpl struct {
	creds       Credentials
	locker      RunLocker
	lockTTL     time.Duration
	accountSvc  AccountInsightService
	audienceSvc AudienceService
	postSvc     PostInsightService
}

func NewSyncService(
	creds Credentials,
	locker RunLocker,
	lockTTL time.Duration,
	accountSvc AccountInsightService,
	audienceSvc AudienceService,
	postSvc PostInsightService,
) SyncService {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &syncServiceImpl{
		creds:       creds,
		locker:      locker,
		lockTTL:     lockTTL,
		accountSvc:  accountSvc,
		audienceSvc: audienceSvc,
		postSvc:     postSvc,
	}
}

func (s *syncServiceImpl) Accounts() []string {
	return s.creds.Accounts()
}

func (s *syncServiceImpl) SyncInsights(ctx context.Context, accountID string) (*dto.AccountInsightsDTO, error) {
	var out *dto.AccountInsightsDTO
	err := s.withRunLock(ctx, accountID, consts.RunKindInsights, func() error {
		var err error
		out, err = s.accountSvc.SyncAccountInsights(ctx, accountID)
		return err
	})
	return out, err
}

func (s *syncServiceImpl) SyncDemographics(ctx context.Context, accountID string) (*dto.DemographicsDTO, error) {
	var out *dto.DemographicsDTO
	err := s.withRunLock(ctx, accountID, consts.RunKindDemographics, func() error {
		var err error
		out, err = s.audienceSvc.SyncDemographics(ctx, accountID)
		return err
	})
	return out, err
}

func (s *syncServiceImpl) SyncPosts(ctx context.Context, accountID string) (*dto.PostsSyncDTO, error) {
	var out *dto.PostsSyncDTO
	err := s.withRunLock(ctx, accountID, consts.RunKindPosts, func() error {
		var err error
		out, err = s.postSvc.SyncPosts(ctx, accountID)
		return err
	})
	return out, err
}

func (s *syncServiceImpl) SyncAll(ctx context.Context, accountID string) (*dto.SyncRunDTO, error) {
	out := &dto.SyncRunDTO{AccountID: accountID}
	err := s.withRunLock(ctx, accountID, consts.RunKindFull, func() error {
		var err error
		if out.Insights, err = s.accountSvc.SyncAccountInsights(ctx, accountID); err != nil {
			addRunError(ctx, out, consts.RunKindInsights, err)
		}
		if out.Demographics, err = s.audienceSvc.SyncDemographics(ctx, accountID); err != nil {
			addRunError(ctx, out, consts.RunKindDemographics, err)
		}
		if out.Posts, err = s.postSvc.SyncPosts(ctx, accountID); err != nil {
			addRunError(ctx, out, consts.RunKindPosts, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// withRunLock 同一账号同一时间只允许一个同步任务
func (s *syncServiceImpl) withRunLock(ctx context.Context, accountID, kind string, fn func() error) error {
	if _, ok := s.creds.Provider(accountID); !ok {
		return ErrAccountNotConfigured
	}

	lockKey := consts.SyncRunLock + accountID
	owner := uuid.NewString()
	locked, err := s.locker.TryLock(ctx, lockKey, owner, s.lockTTL)
	if err != nil {
		log.ErrorContext(ctx, "acquire sync lock failed", "account_id", accountID, "err", err)
		return UnExpectedError
	}
	if !locked {
		return ErrRunInProgress
	}
	defer s.locker.UnLock(context.WithoutCancel(ctx), lockKey, owner)

	start := time.Now()
	log.InfoContext(ctx, "sync run started", "account_id", accountID, "kind", kind)
	err = fn()
	log.InfoContext(ctx, "sync run finished", "account_id", accountID, "kind", kind,
		"duration", time.Since(start).String(), "ok", err == nil)
	return err
}

func addRunError(ctx context.Context, out *dto.SyncRunDTO, kind string, err error) {
	log.WarnContext(ctx, "sync step failed", "account_id", out.AccountID, "kind", kind, "err", err)
	if out.Errors == nil {
		out.Errors = make(map[string]string)
	}
	out.Errors[kind] = err.Error()
}
