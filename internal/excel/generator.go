package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the contracts workbook: a summary sheet with the
// status statistics and a detail sheet with one row per contract.
func (g *Generator) Generate(rows []model.ContractSummary, stats *model.ContractStats) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, stats); err != nil {
		return nil, err
	}

	detailSheet := "Contracts"
	file.NewSheet(detailSheet)
	if err := g.writeDetail(file, detailSheet, rows); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, stats *model.ContractStats) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Total contracts")
	set("B1", stats.Total)
	set("A2", "Active contract value")
	set("B2", stats.ActiveValue)
	set("A3", "Expiring within 30 days")
	set("B3", stats.ExpiringIn30d)

	row := 5
	set(fmt.Sprintf("A%d", row), "Status")
	set(fmt.Sprintf("B%d", row), "Count")
	for _, status := range []model.ContractStatus{
		model.ContractStatusDraft,
		model.ContractStatusActive,
		model.ContractStatusExpired,
		model.ContractStatusCancelled,
		model.ContractStatusRenewed,
	} {
		row++
		set(fmt.Sprintf("A%d", row), string(status))
		set(fmt.Sprintf("B%d", row), stats.ByStatus[status])
	}
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, rows []model.ContractSummary) error {
	headers := []string{
		"Contract #", "Type", "Status", "Client", "Worker",
		"Start", "End", "Salary", "Total value",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.ContractNumber,
			string(row.ContractType),
			string(row.Status),
			row.ClientName,
			row.WorkerName,
			row.StartDate.Format("2006-01-02"),
			row.EndDate.Format("2006-01-02"),
			row.BasicSalary,
			row.TotalValue,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
