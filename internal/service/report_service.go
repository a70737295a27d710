package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/repository"
)

type ExcelGenerator interface {
	Generate(rows []model.ContractSummary, stats *model.ContractStats) ([]byte, error)
}

// ReportService is the read-only side: search, statistics, expiry
// windows and spreadsheet export. It never mutates contract state.
type ReportService struct {
	repo  *repository.ReportRepository
	excel ExcelGenerator
	now   func() time.Time
}

func NewReportService(repo *repository.ReportRepository, excel ExcelGenerator) *ReportService {
	return &ReportService{repo: repo, excel: excel, now: time.Now}
}

type SearchResult struct {
	Rows     []model.ContractSummary
	Total    int64
	Page     int
	PageSize int
}

func (s *ReportService) Search(ctx context.Context, filter model.ContractSearchFilter) (*SearchResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	rows, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &SearchResult{Rows: rows, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *ReportService) Stats(ctx context.Context) (*model.ContractStats, error) {
	stats, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return stats, nil
}

// Expiring lists active contracts ending within the given number of
// days from now. The external expiry sweep and renewal reminders both
// feed off this window.
func (s *ReportService) Expiring(ctx context.Context, days int) ([]model.ContractSummary, error) {
	if days < 1 {
		days = 30
	}
	rows, err := s.repo.ExpiringWithin(ctx, s.now(), days)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return rows, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ReportService) Export(ctx context.Context, filter model.ContractSearchFilter) (*ExportResult, error) {
	filter.Page = 1
	filter.PageSize = 200
	rows, _, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, wrapPersistence(err)
	}
	stats, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, wrapPersistence(err)
	}

	content, err := s.excel.Generate(rows, stats)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: s.buildFileName(filter),
		Content:  content,
	}, nil
}

func (s *ReportService) buildFileName(filter model.ContractSearchFilter) string {
	scope := "all"
	if filter.Status != nil {
		scope = strings.ToLower(string(*filter.Status))
	}
	return fmt.Sprintf("contracts-%s-%s.xlsx", scope, s.now().Format("20060102"))
}
