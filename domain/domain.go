package domain

import "time"

type CreateUser struct {
	Name  string `json:"name" validate:"required,min=2,max=100" label:"Name"`
	Field string `json:"field,omitempty" validate:"max=255" label:"Field"`
}

type CreateBook struct {
	Name string `json:"name" validate:"required,min=1,max=255" label:"Book name"`
}

type ReturnBook struct {
	Score *int `json:"score,omitempty"`
}

type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Field     *string   `json:"field"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BorrowedBook struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	BorrowDate time.Time `json:"borrow_date"`
}

type ReturnedBook struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	BorrowDate time.Time `json:"borrow_date"`
	ReturnDate time.Time `json:"return_date"`
	Rate       *int      `json:"rate"`
}

type UserWithBooks struct {
	User
	BorrowedBooks []BorrowedBook `json:"borrowedBooks"`
	ReturnedBooks []ReturnedBook `json:"returnedBooks"`
}

type Book struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookWithRating carries the aggregate over every rated loan of a book.
// AverageRating is rendered with one decimal, e.g. "9.0", and is nil without ratings.
type BookWithRating struct {
	Book
	AverageRating *string `json:"averageRating"`
	RatingsCount  int64   `json:"ratingsCount"`
}

type Rating struct {
	Rate       int       `json:"rate"`
	UserID     uint      `json:"userId"`
	UserName   string    `json:"userName"`
	ReturnDate time.Time `json:"return_date"`
}

type BookDetail struct {
	BookWithRating
	Ratings []Rating `json:"ratings"`
}

type BorrowRecord struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	BookID     uint      `json:"book_id"`
	BorrowDate time.Time `json:"borrow_date"`
}

type ReturnRecord struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	BookID     uint      `json:"book_id"`
	BorrowDate time.Time `json:"borrow_date"`
	ReturnDate time.Time `json:"return_date"`
	Rate       *int      `json:"rate"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BorrowResult struct {
	Message      string       `json:"message"`
	BorrowRecord BorrowRecord `json:"borrowRecord"`
}

type ReturnResult struct {
	Message       string       `json:"message"`
	UpdatedRecord ReturnRecord `json:"updatedRecord"`
}
