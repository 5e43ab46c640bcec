package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type loanRepository struct {
	database *gorm.DB
}

func (l *loanRepository) Create(ctx context.Context, loan *Loan) error {
	return l.database.WithContext(ctx).Model(Loan{}).Omit(clause.Associations).Create(loan).Error
}

func (l *loanRepository) FindOpenByBook(ctx context.Context, bookId uint) (Loan, error) {
	var (
		loan = Loan{}
	)
	err := l.database.WithContext(ctx).
		Model(Loan{}).
		Where("book_id = ? AND return_date IS NULL", bookId).
		First(&loan).Error
	return loan, err
}

// FindOpen returns the open loan of exactly this user and book, locked for update.
func (l *loanRepository) FindOpen(ctx context.Context, userId, bookId uint) (Loan, error) {
	var (
		loan = Loan{}
	)
	err := l.database.WithContext(ctx).
		Model(Loan{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND book_id = ? AND return_date IS NULL", userId, bookId).
		First(&loan).Error
	return loan, err
}

// Close sets the return date, the optional rate and the update timestamp of an
// open loan. It returns ErrRecordNotFound when the loan was already closed.
func (l *loanRepository) Close(ctx context.Context, loan *Loan, returnedAt time.Time, rate *int) error {
	updates := map[string]interface{}{
		"return_date": returnedAt,
		"updated_at":  returnedAt,
	}
	if rate != nil {
		updates["rate"] = *rate
	}
	res := l.database.WithContext(ctx).
		Model(Loan{}).
		Where("id = ? AND return_date IS NULL", loan.ID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrRecordNotFound
	}
	loan.ReturnDate = &returnedAt
	loan.UpdatedAt = returnedAt
	if rate != nil {
		r := *rate
		loan.Rate = &r
	}
	return nil
}

// OpenLoansByUsers lists the books currently held by the given users.
func (l *loanRepository) OpenLoansByUsers(ctx context.Context, userIds ...uint) ([]BorrowedBookRow, error) {
	var rows []BorrowedBookRow
	if len(userIds) == 0 {
		return rows, nil
	}
	err := l.database.WithContext(ctx).
		Table("borrow_list AS bl").
		Select("bl.user_id, b.id AS book_id, b.name AS book_name, bl.borrow_date").
		Joins("JOIN books AS b ON b.id = bl.book_id").
		Where("bl.user_id IN ? AND bl.return_date IS NULL", userIds).
		Order("bl.user_id, bl.borrow_date, bl.id").
		Scan(&rows).Error
	return rows, err
}

// RecentReturnsByUsers lists, for each given user, the last limit closed loans
// ordered by return date, newest first.
func (l *loanRepository) RecentReturnsByUsers(ctx context.Context, limit int, userIds ...uint) ([]ReturnedBookRow, error) {
	var rows []ReturnedBookRow
	if len(userIds) == 0 {
		return rows, nil
	}
	ranked := l.database.
		Table("borrow_list AS bl").
		Select(
			"bl.user_id, b.id AS book_id, b.name AS book_name, bl.borrow_date, bl.return_date, bl.rate, "+
				"ROW_NUMBER() OVER (PARTITION BY bl.user_id ORDER BY bl.return_date DESC, bl.id DESC) AS rn",
		).
		Joins("JOIN books AS b ON b.id = bl.book_id").
		Where("bl.user_id IN ? AND bl.return_date IS NOT NULL", userIds)
	err := l.database.WithContext(ctx).
		Table("(?) AS ranked", ranked).
		Select("user_id, book_id, book_name, borrow_date, return_date, rate").
		Where("rn <= ?", limit).
		Order("user_id, rn").
		Scan(&rows).Error
	return rows, err
}

// RatingStats sums and counts the non-null rates of the given books in one
// round trip. Books without ratings are absent from the result.
func (l *loanRepository) RatingStats(ctx context.Context, bookIds ...uint) ([]RatingStat, error) {
	var stats []RatingStat
	if len(bookIds) == 0 {
		return stats, nil
	}
	err := l.database.WithContext(ctx).
		Model(Loan{}).
		Select("book_id, SUM(rate) AS rate_sum, COUNT(rate) AS rate_count").
		Where("book_id IN ? AND rate IS NOT NULL", bookIds).
		Group("book_id").
		Scan(&stats).Error
	return stats, err
}

// RatingsByBook lists every rated loan of a book, most recently returned first.
func (l *loanRepository) RatingsByBook(ctx context.Context, bookId uint) ([]RatingRow, error) {
	var rows []RatingRow
	err := l.database.WithContext(ctx).
		Table("borrow_list AS bl").
		Select("bl.rate, u.id AS user_id, u.name AS user_name, bl.return_date").
		Joins("JOIN users AS u ON u.id = bl.user_id").
		Where("bl.book_id = ? AND bl.rate IS NOT NULL", bookId).
		Order("bl.return_date DESC, bl.id DESC").
		Scan(&rows).Error
	return rows, err
}

type LoanRepository interface {
	Create(ctx context.Context, loan *Loan) error
	FindOpenByBook(ctx context.Context, bookId uint) (Loan, error)
	FindOpen(ctx context.Context, userId, bookId uint) (Loan, error)
	Close(ctx context.Context, loan *Loan, returnedAt time.Time, rate *int) error
	OpenLoansByUsers(ctx context.Context, userIds ...uint) ([]BorrowedBookRow, error)
	RecentReturnsByUsers(ctx context.Context, limit int, userIds ...uint) ([]ReturnedBookRow, error)
	RatingStats(ctx context.Context, bookIds ...uint) ([]RatingStat, error)
	RatingsByBook(ctx context.Context, bookId uint) ([]RatingRow, error)
}

func NewLoanRepo(db *gorm.DB) LoanRepository {
	return &loanRepository{database: db}
}
