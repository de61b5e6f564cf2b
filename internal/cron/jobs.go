package cron

import (
	"context"
	"errors"

	"github.com/angelmondragon/comptoir-backend/internal/reports"
	"github.com/angelmondragon/comptoir-backend/pkg/db/models"
)

const (
	JobStockSnapshot      = "stock_snapshot"
	JobStockReportArchive = "stock_report_archive"
)

type SnapshotTaker interface {
	Today() string
	EnsureDailySnapshot(ctx context.Context, day string) (*models.StockSnapshot, bool, error)
}

type snapshotJob struct {
	settings SnapshotTaker
}

// NewSnapshotJob records the day's opening stock if nobody has yet.
func NewSnapshotJob(settings SnapshotTaker) (Job, error) {
	if settings == nil {
		return nil, errors.New("snapshot source required")
	}
	return &snapshotJob{settings: settings}, nil
}

func (j *snapshotJob) Name() string { return JobStockSnapshot }

func (j *snapshotJob) Run(ctx context.Context) error {
	_, _, err := j.settings.EnsureDailySnapshot(ctx, j.settings.Today())
	return err
}

type ReportSource interface {
	Stock(ctx context.Context) (*reports.Report, error)
}

type Uploader interface {
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
}

type reportArchiveJob struct {
	reports  ReportSource
	uploader Uploader
}

// NewReportArchiveJob uploads the current stock report. Each cycle overwrites
// the object for the day, so the last run of the day wins.
func NewReportArchiveJob(source ReportSource, uploader Uploader) (Job, error) {
	if source == nil || uploader == nil {
		return nil, errors.New("report source and uploader required")
	}
	return &reportArchiveJob{reports: source, uploader: uploader}, nil
}

func (j *reportArchiveJob) Name() string { return JobStockReportArchive }

func (j *reportArchiveJob) Run(ctx context.Context) error {
	report, err := j.reports.Stock(ctx)
	if err != nil {
		return err
	}
	_, err = j.uploader.Put(ctx, report.Filename, reports.ContentType, report.Body)
	return err
}
