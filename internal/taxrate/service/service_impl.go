package service

import (
	"context"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/cache"
	"github.com/smallbiznis/invoicedesk/internal/taxrate/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tableCacheTTL = time.Minute

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository

	tables cache.Cache[string, domain.Table]
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("taxrate.service"),
		repo:   p.Repo,
		tables: cache.NewTTLCache[string, domain.Table](),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.TaxRate, error) {
	return s.repo.ListEnabled(ctx, s.db)
}

// Table returns the current jurisdiction snapshot, cached briefly since
// totals recompute on every draft mutation.
func (s *Service) Table(ctx context.Context) (domain.Table, error) {
	if table, ok := s.tables.Get("table"); ok {
		return table, nil
	}

	rates, err := s.repo.ListEnabled(ctx, s.db)
	if err != nil {
		return domain.Table{}, err
	}

	table := domain.NewTable(rates)
	s.tables.Set("table", table, tableCacheTTL)
	s.log.Debug("tax rate table refreshed", zap.Int("jurisdictions", table.Len()))
	return table, nil
}
