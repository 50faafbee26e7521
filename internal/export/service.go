package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
)

const (
	SummarySheet = "Summary"
	ItemsSheet   = "Items"
)

// JobSource resolves a job id to its input and status.
type JobSource interface {
	Job(id string) (entity.JobInput, entity.JobStatus, error)
}

// Service produces XLSX workbooks for finished jobs.
type Service struct {
	jobs   JobSource
	logger *slog.Logger
}

func NewService(jobs JobSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// JobXLSX returns the workbook for a Done job. Jobs in any other state yield a conflict error.
func (s *Service) JobXLSX(ctx context.Context, id string) ([]byte, error) {
	start := time.Now()

	in, st, err := s.jobs.Job(id)
	if err != nil {
		return nil, err
	}
	if st.State != constants.JobStateDone || st.Result == nil {
		return nil, common.NewAppError(common.CodeConflict,
			fmt.Sprintf("job %s is %s, not Done", id, st.State), common.ErrConflict)
	}

	b, err := RenderXLSX(id, in, st)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "export.xlsx.ok",
		"job_id", id,
		"bytes", len(b),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// RenderXLSX builds a two-sheet workbook: job metadata with the summary, and
// one row per decision, action item and risk.
func RenderXLSX(id string, in entity.JobInput, st entity.JobStatus) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	summaryIndex, _ := f.GetSheetIndex(SummarySheet)
	f.SetActiveSheet(summaryIndex)

	var res entity.JobResult
	if st.Result != nil {
		res = *st.Result
	}

	meta := [][2]any{
		{"Job ID", id},
		{"State", string(st.State)},
		{"Language", in.DetectedLanguage},
		{"Started At", formatTime(st.StartedAt)},
		{"Completed At", formatTime(st.CompletedAt)},
		{"Summary", res.Summary},
	}
	for i, kv := range meta {
		row := i + 1
		if err := f.SetSheetRow(SummarySheet, cellName(1, row), &[]any{kv[0], kv[1]}); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	if err := f.SetSheetRow(ItemsSheet, "A1", &[]any{"Kind", "#", "Item"}); err != nil {
		return nil, fmt.Errorf("write items header: %w", err)
	}
	row := 2
	groups := []struct {
		kind  string
		items []string
	}{
		{"Decision", res.Decisions},
		{"Action Item", res.ActionItems},
		{"Risk", res.Risks},
	}
	for _, g := range groups {
		for i, item := range g.items {
			if err := f.SetSheetRow(ItemsSheet, cellName(1, row), &[]any{g.kind, i + 1, item}); err != nil {
				return nil, fmt.Errorf("write item row: %w", err)
			}
			row++
		}
	}

	_ = f.SetColWidth(SummarySheet, "A", "A", 16)
	_ = f.SetColWidth(SummarySheet, "B", "B", 80)
	_ = f.SetColWidth(ItemsSheet, "A", "A", 14)
	_ = f.SetColWidth(ItemsSheet, "B", "B", 5)
	_ = f.SetColWidth(ItemsSheet, "C", "C", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	c, _ := excelize.CoordinatesToCellName(col, row)
	return c
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
