package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"library/log"
)

// OpenLoanIndex guarantees at most one open loan per book.
const OpenLoanIndex = "idx_borrow_list_open_book"

// Migrate creates or updates the users, books and borrow_list tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	logger := log.GetLogger(ctx)
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(&User{}, &Book{}, &Loan{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := createOpenLoanIndex(db); err != nil {
		return fmt.Errorf("create %s: %w", OpenLoanIndex, err)
	}
	logger.Infoln("schema is up to date")
	return nil
}

func createOpenLoanIndex(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "postgres":
		return db.Exec(
			"CREATE UNIQUE INDEX IF NOT EXISTS " + OpenLoanIndex +
				" ON borrow_list (book_id) WHERE return_date IS NULL",
		).Error
	case "mysql":
		// MySQL has no partial indexes. A unique index over a generated column that is
		// NULL for closed loans gives the same guarantee, since NULLs never collide.
		if db.Migrator().HasIndex(&Loan{}, OpenLoanIndex) {
			return nil
		}
		return db.Exec(
			"ALTER TABLE borrow_list " +
				"ADD COLUMN open_book_id BIGINT UNSIGNED GENERATED ALWAYS AS (IF(return_date IS NULL, book_id, NULL)) STORED, " +
				"ADD UNIQUE INDEX " + OpenLoanIndex + " (open_book_id)",
		).Error
	default:
		return fmt.Errorf("unsupported dialect %q", db.Dialector.Name())
	}
}
