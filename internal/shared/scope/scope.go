package scope

import (
	"time"

	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// DateRange limits column to the inclusive [from, to] calendar range.
// Either bound may be nil.
func DateRange(column string, from, to *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", from.Format(dateLayout))
		}
		if to != nil {
			db = db.Where(column+" <= ?", to.Format(dateLayout))
		}
		return db
	}
}

// InStrings applies column IN (...) only when values is non-empty.
func InStrings(column string, values []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(values) == 0 {
			return db
		}
		return db.Where(column+" IN ?", values)
	}
}
