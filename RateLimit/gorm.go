package RateLimit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Folio/Models"
)

// GormCounter stores counters in a shared database so several relay
// instances enforce one bound per client.
type GormCounter struct {
	DB  *gorm.DB
	now func() time.Time
}

// NewGormCounter creates a counter over db. The rate_counters table must
// already exist (see Models.Connect).
func NewGormCounter(db *gorm.DB) *GormCounter {
	return &GormCounter{DB: db, now: time.Now}
}

func (g *GormCounter) Increment(ctx context.Context, key string, d time.Duration) (int, error) {
	now := g.now().UTC()
	row := Models.RateCounter{ClientKey: key, Hits: 1, WindowEnd: now.Add(d)}

	var hits int
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// hits is assigned before window_end so both CASEs see the old window.
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "client_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"hits":       gorm.Expr("CASE WHEN rate_counters.window_end > ? THEN rate_counters.hits + 1 ELSE 1 END", now),
				"window_end": gorm.Expr("CASE WHEN rate_counters.window_end > ? THEN rate_counters.window_end ELSE ? END", now, row.WindowEnd),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var current Models.RateCounter
		if err := tx.Where("client_key = ?", key).Take(&current).Error; err != nil {
			return err
		}
		hits = current.Hits
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("incrementing counter for %q: %w", key, err)
	}
	return hits, nil
}

func (g *GormCounter) Sweep(ctx context.Context) (int64, error) {
	result := g.DB.WithContext(ctx).
		Where("window_end <= ?", g.now().UTC()).
		Delete(&Models.RateCounter{})
	if result.Error != nil {
		return 0, fmt.Errorf("sweeping rate counters: %w", result.Error)
	}
	return result.RowsAffected, nil
}
