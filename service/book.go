package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"library/domain"
	"library/repository"
)

type BookService struct {
	store repository.Store
}

func NewBookService(store repository.Store) *BookService {
	return &BookService{store: store}
}

func (s *BookService) Create(ctx context.Context, cmd domain.CreateBook) (domain.Book, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := domain.Validate(cmd); err != nil {
		return domain.Book{}, err
	}

	book := repository.Book{Name: cmd.Name}
	if err := s.store.Books().Create(ctx, &book); err != nil {
		if repository.IsUniqueViolation(err, repository.BookNameIndex) {
			return domain.Book{}, domain.NewDuplicateError("Book with name %q already exists", cmd.Name)
		}
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	return toBook(book), nil
}

// List returns every book with its rating aggregate.
func (s *BookService) List(ctx context.Context) ([]domain.BookWithRating, error) {
	books, err := s.store.Books().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	ids := lo.Map(books, func(b repository.Book, _ int) uint { return b.ID })
	stats, err := s.store.Loans().RatingStats(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("rating stats: %w", err)
	}
	byBook := lo.KeyBy(stats, func(st repository.RatingStat) uint { return st.BookID })

	return lo.Map(books, func(b repository.Book, _ int) domain.BookWithRating {
		return withRating(b, byBook[b.ID])
	}), nil
}

// Get returns one book with its rating aggregate and every rating, newest first.
func (s *BookService) Get(ctx context.Context, bookID uint) (domain.BookDetail, error) {
	book, err := s.store.Books().GetById(ctx, bookID)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.BookDetail{}, domain.NewNotFoundError("Book with ID %d not found", bookID)
		}
		return domain.BookDetail{}, fmt.Errorf("get book: %w", err)
	}
	stats, err := s.store.Loans().RatingStats(ctx, book.ID)
	if err != nil {
		return domain.BookDetail{}, fmt.Errorf("rating stats: %w", err)
	}
	rows, err := s.store.Loans().RatingsByBook(ctx, book.ID)
	if err != nil {
		return domain.BookDetail{}, fmt.Errorf("ratings: %w", err)
	}

	var stat repository.RatingStat
	if len(stats) > 0 {
		stat = stats[0]
	}
	return domain.BookDetail{
		BookWithRating: withRating(book, stat),
		Ratings: lo.Map(rows, func(r repository.RatingRow, _ int) domain.Rating {
			return domain.Rating{
				Rate:       r.Rate,
				UserID:     r.UserID,
				UserName:   r.UserName,
				ReturnDate: r.ReturnDate,
			}
		}),
	}, nil
}

func withRating(b repository.Book, stat repository.RatingStat) domain.BookWithRating {
	return domain.BookWithRating{
		Book:          toBook(b),
		AverageRating: averageRating(stat),
		RatingsCount:  stat.Count,
	}
}
