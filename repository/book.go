package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookRepository struct {
	database *gorm.DB
}

func (b *bookRepository) Create(ctx context.Context, book *Book) error {
	return b.database.WithContext(ctx).Model(Book{}).Create(book).Error
}

func (b *bookRepository) GetById(ctx context.Context, bookId uint) (Book, error) {
	var (
		book = Book{}
	)
	err := b.database.WithContext(ctx).Model(Book{}).Where("id = ?", bookId).First(&book).Error
	return book, err
}

// GetByIdForUpdate locks the book row until the surrounding transaction ends,
// serialising borrow and return attempts on the same book.
func (b *bookRepository) GetByIdForUpdate(ctx context.Context, bookId uint) (Book, error) {
	var (
		book = Book{}
	)
	err := b.database.WithContext(ctx).
		Model(Book{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", bookId).
		First(&book).Error
	return book, err
}

func (b *bookRepository) List(ctx context.Context) ([]Book, error) {
	var books []Book
	err := b.database.WithContext(ctx).Model(Book{}).Order("id").Find(&books).Error
	return books, err
}

type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	GetById(ctx context.Context, bookId uint) (Book, error)
	GetByIdForUpdate(ctx context.Context, bookId uint) (Book, error)
	List(ctx context.Context) ([]Book, error)
}

func NewBookRepo(db *gorm.DB) BookRepository {
	return &bookRepository{database: db}
}
