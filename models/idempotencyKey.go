package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const idempotencyScopeSale = "sale"

// IdempotencyKey remembers which record a client-supplied key produced.
// Unique constraint: (scope, user_id, idempotency_key).
type IdempotencyKey struct {
	ID             int       `gorm:"primary_key" json:"id"`
	Scope          string    `gorm:"size:50;not null;index:uniq_idem,unique" json:"scope"`
	UserId         int       `gorm:"not null;index:uniq_idem,unique" json:"user_id"`
	IdempotencyKey string    `gorm:"size:255;not null;index:uniq_idem,unique" json:"idempotency_key"`
	ReferenceId    int       `gorm:"not null" json:"reference_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// findIdempotentReferenceTx returns the record id stored for key, or 0.
func findIdempotentReferenceTx(tx *gorm.DB, scope string, userId int, key string) (int, error) {
	var record IdempotencyKey
	err := tx.Where("scope = ? AND user_id = ? AND idempotency_key = ?", scope, userId, key).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.ReferenceId, nil
}

func saveIdempotencyKeyTx(tx *gorm.DB, scope string, userId int, key string, referenceId int) error {
	return tx.Create(&IdempotencyKey{
		Scope:          scope,
		UserId:         userId,
		IdempotencyKey: key,
		ReferenceId:    referenceId,
	}).Error
}
