package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/ledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionGap indicates an event arrived whose version is more than one
// ahead of the last applied version for its stream. The handler returns it
// so the bus surfaces the failure and the event can be redelivered after
// the missing events arrive or the projection is rebuilt.
var ErrVersionGap = &shared.DomainError{
	Code:    "PROJECTION_VERSION_GAP",
	Message: "event version is ahead of the projection offset",
}

// guardVersion enforces idempotent, in-order application of an event within
// a projection transaction. It returns (false, nil) when the event version
// is at or below the recorded offset (already applied, skip silently),
// ErrVersionGap when the version skips ahead, and (true, nil) after
// advancing the offset for the expected next version.
func guardVersion(tx *gorm.DB, projectionName, streamID string, version int) (bool, error) {
	var offset ProjectionOffset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("projection_name = ? AND stream_id = ?", projectionName, streamID).
		First(&offset).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to read projection offset: %w", err)
	}

	last := 0
	if err == nil {
		last = offset.LastVersion
	}
	if version <= last {
		return false, nil
	}
	if version > last+1 {
		return false, fmt.Errorf("%w: stream %s at %d, got %d", ErrVersionGap, streamID, last, version)
	}

	row := ProjectionOffset{
		ProjectionName: projectionName,
		StreamID:       streamID,
		LastVersion:    version,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "projection_name"}, {Name: "stream_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_version", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return false, fmt.Errorf("failed to advance projection offset: %w", err)
	}
	return true, nil
}
