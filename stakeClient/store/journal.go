package store

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no journal row matches a hash.
var ErrNotFound = errors.New("journal entry not found")

// Journal persists StakeTransaction rows.
type Journal struct {
	db *gorm.DB
}

// NewJournal wraps an already migrated database.
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// RecordBroadcast inserts a pending row for a freshly broadcast transaction.
func (j *Journal) RecordBroadcast(tx *StakeTransaction) error {
	tx.Status = StatusPending
	if err := j.db.Create(tx).Error; err != nil {
		return errors.Wrapf(err, "failed to record broadcast %s", tx.TxHash)
	}
	return nil
}

// MarkConfirmed stores the inclusion result of hash.
func (j *Journal) MarkConfirmed(hash string, height int64, code uint32, rawLog string) error {
	status := StatusConfirmed
	if code != 0 {
		status = StatusFailed
	}
	return j.update(hash, map[string]any{
		"status":  status,
		"height":  height,
		"code":    code,
		"raw_log": rawLog,
	})
}

// MarkFailed flags hash as failed with reason.
func (j *Journal) MarkFailed(hash, reason string) error {
	return j.update(hash, map[string]any{
		"status":  StatusFailed,
		"raw_log": reason,
	})
}

func (j *Journal) update(hash string, fields map[string]any) error {
	res := j.db.Model(&StakeTransaction{}).Where("tx_hash = ?", hash).Updates(fields)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to update journal entry %s", hash)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "tx %s", hash)
	}
	return nil
}

// Get returns the row for hash.
func (j *Journal) Get(hash string) (*StakeTransaction, error) {
	var out StakeTransaction
	err := j.db.Where("tx_hash = ?", hash).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "tx %s", hash)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load journal entry %s", hash)
	}
	return &out, nil
}

// ListByStatus returns up to limit rows with status, oldest first. limit <= 0 returns all.
func (j *Journal) ListByStatus(status string, limit int) ([]StakeTransaction, error) {
	q := j.db.Where("status = ?", status).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []StakeTransaction
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list %s journal entries", status)
	}
	return out, nil
}

// List returns up to limit rows, newest first. limit <= 0 returns all.
func (j *Journal) List(limit int) ([]StakeTransaction, error) {
	q := j.db.Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []StakeTransaction
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list journal entries")
	}
	return out, nil
}

// PruneSettled hard-deletes confirmed and failed rows last updated before olderThan ago.
func (j *Journal) PruneSettled(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := j.db.Unscoped().
		Where("status IN ? AND updated_at < ?", []string{StatusConfirmed, StatusFailed}, cutoff).
		Delete(&StakeTransaction{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to prune journal")
	}
	return res.RowsAffected, nil
}
