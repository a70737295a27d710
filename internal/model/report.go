package model

import "time"

// ContractSummary is the row shape returned by contract searches: the
// contract joined with the party names the listing screens show.
type ContractSummary struct {
	ID             uint           `json:"id"`
	ContractNumber string         `json:"contract_number"`
	ContractType   ContractType   `json:"contract_type"`
	Status         ContractStatus `json:"status"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	BasicSalary    float64        `json:"basic_salary"`
	TotalValue     float64        `json:"total_value"`
	ClientID       uint           `json:"client_id"`
	ClientName     string         `json:"client_name"`
	WorkerID       uint           `json:"worker_id"`
	WorkerName     string         `json:"worker_name"`
}

type ContractStats struct {
	Total         int64
	ByStatus      map[ContractStatus]int64
	ActiveValue   float64
	ExpiringIn30d int64
}

type ContractSearchFilter struct {
	Query    string
	Status   *ContractStatus
	ClientID *uint
	WorkerID *uint
	Page     int
	PageSize int
}
