package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainagg "github.com/adverto/adboard-backend/internal/domain/aggregates"
)

// LockForUpdate takes a row-level lock on the given model row for the duration
// of the enclosing transaction. Serializes concurrent writers on the same row.
func LockForUpdate(ctx context.Context, tx *gorm.DB, model any, id uuid.UUID) error {
	if tx == nil {
		return domainagg.NewError(domainagg.CodeInternal, "lock", "row lock requires an open transaction", nil)
	}
	if id == uuid.Nil {
		return domainagg.ValidationError("lock", "id required")
	}
	return tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(model).Error
}

// CloseOpenWindow performs the compare-and-set close of a time window row:
// the update applies only while the row is still open (valid_to IS NULL).
// Returns false when another writer closed it first.
func CloseOpenWindow(ctx context.Context, tx *gorm.DB, table string, id uuid.UUID, closeAt time.Time) (bool, error) {
	if tx == nil {
		return false, domainagg.NewError(domainagg.CodeInternal, "cas", "window close requires an open transaction", nil)
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, domainagg.ValidationError("cas", "table and id are required")
	}
	res := tx.WithContext(ctx).
		Table(table).
		Where("id = ? AND valid_to IS NULL", id).
		Update("valid_to", closeAt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a retryable error.
func RequireCASSuccess(ok bool, op, message string) error {
	if ok {
		return nil
	}
	return domainagg.RetryableError(op, strings.TrimSpace(message))
}
