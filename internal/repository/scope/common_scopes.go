package scope

import "gorm.io/gorm"

// Chronological orders turns by insertion. seq is a bigserial, so it stays
// monotonic even when several turns share a created_at.
func Chronological(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}
