package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library/log"
)

// Seed replaces every user, book and loan with a small sample data set.
func Seed(ctx context.Context, db *gorm.DB) error {
	logger := log.GetLogger(ctx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&Loan{}, &Book{}, &User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}

		users := []User{
			{Name: "John Doe"},
			{Name: "Jane Smith"},
			{Name: "Robert Johnson"},
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		books := []Book{
			{Name: "Clean Code"},
			{Name: "Pride and Prejudice"},
			{Name: "Introduction to Algorithms"},
			{Name: "Design Patterns"},
			{Name: "To Kill a Mockingbird"},
		}
		if err := tx.Create(&books).Error; err != nil {
			return err
		}

		rate9, rate7 := 9, 7
		loans := []Loan{
			{
				UserID:     users[0].ID,
				BookID:     books[0].ID,
				BorrowDate: time.Date(2023, 3, 15, 10, 0, 0, 0, time.UTC),
				ReturnDate: timePtr(time.Date(2023, 3, 30, 14, 30, 0, 0, time.UTC)),
				Rate:       &rate9,
			},
			{
				UserID:     users[1].ID,
				BookID:     books[2].ID,
				BorrowDate: time.Date(2023, 3, 20, 11, 30, 0, 0, time.UTC),
			},
			{
				UserID:     users[2].ID,
				BookID:     books[4].ID,
				BorrowDate: time.Date(2023, 3, 25, 9, 15, 0, 0, time.UTC),
				ReturnDate: timePtr(time.Date(2023, 4, 1, 16, 45, 0, 0, time.UTC)),
				Rate:       &rate7,
			},
		}
		if err := tx.Omit(clause.Associations).Create(&loans).Error; err != nil {
			return err
		}
		logger.Infof("seeded %d users, %d books and %d loans", len(users), len(books), len(loans))
		return nil
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
