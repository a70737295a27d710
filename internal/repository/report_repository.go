package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const summarySelect = `
	SELECT
		c.id,
		c.contract_number,
		c.contract_type,
		c.status,
		c.start_date,
		c.end_date,
		c.basic_salary,
		c.total_contract_value AS total_value,
		c.client_id,
		cl.full_name AS client_name,
		c.worker_id,
		w.full_name AS worker_name
	FROM contracts c
	JOIN clients cl ON cl.id = c.client_id
	JOIN workers w ON w.id = c.worker_id
`

// Search runs the listing query used by the contracts screen: free-text
// match over contract number and party names plus optional status and
// party filters, newest first, paginated.
func (r *ReportRepository) Search(ctx context.Context, filter model.ContractSearchFilter) ([]model.ContractSummary, int64, error) {
	where := []string{"1=1"}
	args := []any{}

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(c.contract_number) LIKE ? OR LOWER(cl.full_name) LIKE ? OR LOWER(w.full_name) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Status != nil {
		where = append(where, "c.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.ClientID != nil {
		where = append(where, "c.client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.WorkerID != nil {
		where = append(where, "c.worker_id = ?")
		args = append(args, *filter.WorkerID)
	}

	clause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM contracts c
		JOIN clients cl ON cl.id = c.client_id
		JOIN workers w ON w.id = c.worker_id
	` + clause
	if err := r.db.WithContext(ctx).Raw(countQuery, args...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := summarySelect + clause + " ORDER BY c.id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, (page-1)*pageSize)

	var rows []model.ContractSummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *ReportRepository) Stats(ctx context.Context, now time.Time) (*model.ContractStats, error) {
	type statusCount struct {
		Status model.ContractStatus
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM contracts
		GROUP BY status
	`).Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	stats := &model.ContractStats{ByStatus: make(map[model.ContractStatus]int64)}
	for _, row := range counts {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total_contract_value), 0)
		FROM contracts
		WHERE status = ?
	`, model.ContractStatusActive).Scan(&stats.ActiveValue).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM contracts
		WHERE status = ? AND end_date >= ? AND end_date < ?
	`, model.ContractStatusActive, now, now.AddDate(0, 0, 30)).Scan(&stats.ExpiringIn30d).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ExpiringWithin lists active contracts whose end date falls inside the
// window. The external expiry sweep consumes this.
func (r *ReportRepository) ExpiringWithin(ctx context.Context, from time.Time, days int) ([]model.ContractSummary, error) {
	to := from.AddDate(0, 0, days)
	var rows []model.ContractSummary
	err := r.db.WithContext(ctx).Raw(
		summarySelect+` WHERE c.status = ? AND c.end_date >= ? AND c.end_date < ? ORDER BY c.end_date ASC`,
		model.ContractStatusActive, from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
