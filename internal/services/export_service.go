package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportClosedRequests renders the closed-entry audit trail as an xlsx
// workbook.
func (s *exportService) ExportClosedRequests(ctx context.Context) ([]byte, error) {
	requests, err := s.repo.AccessRequest().ListByStatus(ctx, models.RequestClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed requests: %w", err)
	}

	headers := []string{"ID", "Username", "Description", "Date", "Reopened From"}
	rows := make([][]interface{}, 0, len(requests))
	for _, r := range requests {
		record := models.NewAccessRequestRecord(r)
		reopenedFrom := ""
		if record.ReopenedFromID != nil {
			reopenedFrom = fmt.Sprintf("%d", *record.ReopenedFromID)
		}
		rows = append(rows, []interface{}{record.ID, record.Username, record.Description, record.Date, reopenedFrom})
	}

	data, err := buildWorkbook("Closed Requests", headers, rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("closed requests exported", "count", len(requests))
	return data, nil
}

// ExportFlags renders the full moderation-flag ledger as an xlsx workbook.
func (s *exportService) ExportFlags(ctx context.Context) ([]byte, error) {
	flags, _, err := s.repo.ContentFlag().List(ctx, repositories.ContentFlagFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}

	headers := []string{"ID", "Target Type", "Target ID", "Flagged By", "Date", "Reason", "Snippet", "Resolved"}
	rows := make([][]interface{}, 0, len(flags))
	for _, f := range flags {
		record := models.NewContentFlagRecord(f)
		rows = append(rows, []interface{}{
			record.ID, record.TargetType, record.TargetID, record.FlaggedBy,
			record.Date, record.Reason, record.ContentSnippet, record.Resolved,
		})
	}

	data, err := buildWorkbook("Content Flags", headers, rows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("flags exported", "count", len(flags))
	return data, nil
}

func buildWorkbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
