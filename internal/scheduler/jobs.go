package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/report"
	"github.com/ikkim/storerating-backend/internal/storage"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/metrics"
)

const (
	PlatformStatsJob = "platform-stats"
	StoresReportJob  = "stores-report"
)

// ReportUploader stores a generated report.
type ReportUploader interface {
	UploadReport(ctx context.Context, data []byte, contentType string, generatedAt time.Time) (*storage.UploadResult, error)
}

// PlatformStats refreshes the platform total gauges.
func PlatformStats(dashboard service.DashboardService, appMetrics *metrics.AppMetrics) JobFunc {
	return func(ctx context.Context) error {
		stats, err := dashboard.Stats(ctx)
		if err != nil {
			return err
		}
		appMetrics.SetPlatformTotals(stats.TotalUsers, stats.TotalStores, stats.TotalRatings)
		return nil
	}
}

// StoresReport renders every store with its aggregates and uploads the workbook.
func StoresReport(stores service.StoreService, uploader ReportUploader, now func() time.Time) JobFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context) error {
		rows, err := stores.ListStores(ctx, repository.StoreFilter{SortBy: "name"})
		if err != nil {
			return err
		}
		data, err := report.StoresWorkbook(rows)
		if err != nil {
			return err
		}
		result, err := uploader.UploadReport(ctx, data, report.ContentType, now())
		if err != nil {
			return err
		}
		logger.Info("Stores report uploaded", map[string]interface{}{
			"key":    result.Key,
			"url":    result.URL,
			"stores": len(rows),
		})
		return nil
	}
}
