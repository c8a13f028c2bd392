// Package export writes a recommendation ranking to a spreadsheet.
package export

import (
	"fmt"

	"bestcard/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	RankingSheet  = "Ranking"
	ScenarioSheet = "Scenario"
)

var rankingHeaders = []string{"Rank", "Card ID", "Card", "Cashback", "Fee", "Net Reward", "Reasoning"}

// RankingXLSX renders the ranked cards plus the parsed scenario and evidence.
func RankingXLSX(resp *domain.RecommendResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet1 по умолчанию переименовываем в Ranking
	if err := f.SetSheetName("Sheet1", RankingSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	for i, h := range rankingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(RankingSheet, cell, h)
	}

	for i, ev := range resp.RankedCards {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(RankingSheet, cell, v)
		}
		write(1, i+1)
		write(2, ev.CardID)
		write(3, ev.CardName)
		write(4, ev.Cashback.InexactFloat64())
		write(5, ev.Fee.InexactFloat64())
		write(6, ev.NetReward.InexactFloat64())
		write(7, ev.Reasoning)
	}

	_ = f.SetColWidth(RankingSheet, "A", "A", 6)
	_ = f.SetColWidth(RankingSheet, "B", "C", 22)
	_ = f.SetColWidth(RankingSheet, "D", "F", 12)
	_ = f.SetColWidth(RankingSheet, "G", "G", 70)

	if _, err := f.NewSheet(ScenarioSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	s := resp.ParsedScenario
	monthly := ""
	if s.MonthlySpendEstimate != nil {
		monthly = s.MonthlySpendEstimate.String()
	}
	rows := [][]any{
		{"Amount", s.Amount.InexactFloat64()},
		{"Category", s.Category},
		{"Foreign", s.IsForeign},
		{"Currency", s.Currency},
		{"Annual fee proration", s.IncludeAnnualFeeProration},
		{"Monthly spend estimate", monthly},
		{"Best card", resp.BestCard.CardName},
	}
	for _, line := range resp.PolicyEvidence {
		rows = append(rows, []any{"Evidence", line})
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(ScenarioSheet, cell, &r)
	}
	_ = f.SetColWidth(ScenarioSheet, "A", "A", 24)
	_ = f.SetColWidth(ScenarioSheet, "B", "B", 70)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
