package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

const slowQueryThreshold = 5 * time.Millisecond

// QueryHook is a bun.QueryHook that logs queries through logrus.
type QueryHook struct {
	logger *logrus.Logger
}

// NewQueryHook creates a QueryHook that logs SQL queries via the given logger.
func NewQueryHook(logger *logrus.Logger) *QueryHook {
	return &QueryHook{logger: logger}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	dur := time.Since(event.StartTime)
	query := event.Query
	if len(query) > 200 {
		query = query[:200] + "..."
	}

	fields := logrus.Fields{
		"operation": event.Operation(),
		"duration":  dur.String(),
		"query":     query,
	}

	if event.Err != nil {
		fields["error"] = event.Err.Error()
		h.logger.WithFields(fields).Error("query error")
		return
	}

	if dur >= slowQueryThreshold {
		fields["slow_query"] = true
		h.logger.WithFields(fields).Warn("slow query")
		return
	}

	h.logger.WithFields(fields).Debug("query")
}
