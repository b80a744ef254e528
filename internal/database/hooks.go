package database

import (
	"time"

	"example.com/backstage/services/picking/internal/metrics"

	"gorm.io/gorm"
)

const startTimeKey = "metrics:start_time"

// RegisterHooks registers gorm callbacks that time every statement into the default collector
func RegisterHooks(db *gorm.DB) error {
	cb := db.Callback()

	steps := []struct {
		queryType string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}{
		{
			queryType: metrics.DBQueryInsert,
			before:    cb.Create().Before("gorm:create").Register,
			after:     cb.Create().After("gorm:create").Register,
		},
		{
			queryType: metrics.DBQuerySelect,
			before:    cb.Query().Before("gorm:query").Register,
			after:     cb.Query().After("gorm:query").Register,
		},
		{
			queryType: metrics.DBQueryUpdate,
			before:    cb.Update().Before("gorm:update").Register,
			after:     cb.Update().After("gorm:update").Register,
		},
		{
			queryType: metrics.DBQueryDelete,
			before:    cb.Delete().Before("gorm:delete").Register,
			after:     cb.Delete().After("gorm:delete").Register,
		},
	}

	for _, step := range steps {
		queryType := step.queryType
		if err := step.before("metrics:start_"+queryType, markStart); err != nil {
			return err
		}
		if err := step.after("metrics:record_"+queryType, func(tx *gorm.DB) {
			metrics.Default().RecordDatabaseQuery(queryType, tx.Error, elapsed(tx))
		}); err != nil {
			return err
		}
	}
	return nil
}

func markStart(tx *gorm.DB) {
	tx.InstanceSet(startTimeKey, time.Now())
}

func elapsed(tx *gorm.DB) time.Duration {
	if start, ok := tx.InstanceGet(startTimeKey); ok {
		return time.Since(start.(time.Time))
	}
	return 0
}
