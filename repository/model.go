package repository

import "time"

// Unique index names, reported back by the driver on violation.
const (
	UserNameIndex = "idx_users_name"
	BookNameIndex = "idx_books_name"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"type:varchar(100);column:name;not null;uniqueIndex:idx_users_name"`
	Field     *string   `gorm:"type:varchar(255);column:field"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (User) TableName() string { return "users" }

type Book struct {
	ID        uint      `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"type:varchar(255);column:name;not null;uniqueIndex:idx_books_name"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Book) TableName() string { return "books" }

// Loan is a borrow_list row. It is open while ReturnDate is nil.
type Loan struct {
	ID         uint       `gorm:"primaryKey;autoIncrement;column:id"`
	UserID     uint       `gorm:"column:user_id;not null;index"`
	BookID     uint       `gorm:"column:book_id;not null;index"`
	BorrowDate time.Time  `gorm:"column:borrow_date;not null"`
	ReturnDate *time.Time `gorm:"column:return_date"`
	Rate       *int       `gorm:"column:rate;check:chk_borrow_list_rate,rate >= 0 AND rate <= 10"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Book Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

func (Loan) TableName() string { return "borrow_list" }

// Open reports whether the loan has not been returned yet.
func (l Loan) Open() bool {
	return l.ReturnDate == nil
}

type BorrowedBookRow struct {
	UserID     uint
	BookID     uint
	BookName   string
	BorrowDate time.Time
}

type ReturnedBookRow struct {
	UserID     uint
	BookID     uint
	BookName   string
	BorrowDate time.Time
	ReturnDate time.Time
	Rate       *int
}

// RatingStat aggregates the non-null rates of one book.
type RatingStat struct {
	BookID uint    `gorm:"column:book_id"`
	Sum    float64 `gorm:"column:rate_sum"`
	Count  int64   `gorm:"column:rate_count"`
}

type RatingRow struct {
	Rate       int
	UserID     uint
	UserName   string
	ReturnDate time.Time
}
