package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BusinessMetricsCollector collects business metrics periodically
type BusinessMetricsCollector struct {
	db       *gorm.DB
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &BusinessMetricsCollector{
		db:       db,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *BusinessMetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *BusinessMetricsCollector) Stop() {
	close(c.done)
}

// collect gathers business metrics
func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection",
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db := c.db.WithContext(ctx)

	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Table("users").Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		c.logger.Error("Failed to count users", zap.Error(err))
	} else {
		// statuses without rows are reported as zero
		counts := map[string]int64{"active": 0, "banned": 0, "deleted": 0}
		for _, row := range rows {
			counts[row.Status] = row.Count
		}
		for status, count := range counts {
			c.metrics.SetUsersTotal(status, count)
		}
	}

	totals := make([]int64, 4)
	for i, table := range []string{"sections", "threads", "topics", "comments"} {
		if err := db.Table(table).Count(&totals[i]).Error; err != nil {
			c.logger.Error("Failed to count rows", zap.String("table", table), zap.Error(err))
			return
		}
	}
	c.metrics.SetContentTotals(totals[0], totals[1], totals[2], totals[3])
}
