package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"library/domain"
	"library/events"
	"library/repository"
)

const (
	messageBorrowed = "Book borrowed successfully"
	messageReturned = "Book returned successfully"
)

type UserService struct {
	store     repository.Store
	publisher events.Publisher
	now       func() time.Time
}

func NewUserService(store repository.Store, publisher events.Publisher) *UserService {
	return &UserService{
		store:     store,
		publisher: publisher,
		now:       utcNow,
	}
}

func (s *UserService) Create(ctx context.Context, cmd domain.CreateUser) (domain.User, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Field = strings.TrimSpace(cmd.Field)
	if err := domain.Validate(cmd); err != nil {
		return domain.User{}, err
	}

	user := repository.User{Name: cmd.Name}
	if cmd.Field != "" {
		user.Field = &cmd.Field
	}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		if repository.IsUniqueViolation(err, repository.UserNameIndex) {
			return domain.User{}, domain.NewDuplicateError("User with name %q already exists", cmd.Name)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return toUser(user), nil
}

// List returns every user with the books they hold and their latest returns.
func (s *UserService) List(ctx context.Context) ([]domain.UserWithBooks, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.withBooks(ctx, users)
}

func (s *UserService) Get(ctx context.Context, userID uint) (domain.UserWithBooks, error) {
	user, err := s.store.Users().GetById(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.UserWithBooks{}, domain.NewNotFoundError("User with ID %d not found", userID)
		}
		return domain.UserWithBooks{}, fmt.Errorf("get user: %w", err)
	}
	result, err := s.withBooks(ctx, []repository.User{user})
	if err != nil {
		return domain.UserWithBooks{}, err
	}
	return result[0], nil
}

func (s *UserService) withBooks(ctx context.Context, users []repository.User) ([]domain.UserWithBooks, error) {
	ids := lo.Map(users, func(u repository.User, _ int) uint { return u.ID })

	borrowed, err := s.store.Loans().OpenLoansByUsers(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("borrowed books: %w", err)
	}
	returned, err := s.store.Loans().RecentReturnsByUsers(ctx, recentReturnsLimit, ids...)
	if err != nil {
		return nil, fmt.Errorf("returned books: %w", err)
	}
	borrowedByUser := lo.GroupBy(borrowed, func(r repository.BorrowedBookRow) uint { return r.UserID })
	returnedByUser := lo.GroupBy(returned, func(r repository.ReturnedBookRow) uint { return r.UserID })

	return lo.Map(users, func(u repository.User, _ int) domain.UserWithBooks {
		return domain.UserWithBooks{
			User: toUser(u),
			BorrowedBooks: lo.Map(borrowedByUser[u.ID], func(r repository.BorrowedBookRow, _ int) domain.BorrowedBook {
				return domain.BorrowedBook{ID: r.BookID, Name: r.BookName, BorrowDate: r.BorrowDate}
			}),
			ReturnedBooks: lo.Map(returnedByUser[u.ID], func(r repository.ReturnedBookRow, _ int) domain.ReturnedBook {
				return domain.ReturnedBook{
					ID:         r.BookID,
					Name:       r.BookName,
					BorrowDate: r.BorrowDate,
					ReturnDate: r.ReturnDate,
					Rate:       r.Rate,
				}
			}),
		}
	}), nil
}

// Borrow opens a loan of bookID for userID. The book row stays locked while the
// open loans are checked, and the open loan index rejects any concurrent insert.
func (s *UserService) Borrow(ctx context.Context, userID, bookID uint) (domain.BorrowResult, error) {
	var loan repository.Loan
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		user, book, err := loadUserAndBook(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}

		open, err := tx.Loans().FindOpenByBook(ctx, book.ID)
		switch {
		case err == nil:
			if open.UserID == user.ID {
				return domain.NewConflictError("Book %q is already borrowed by user %q", book.Name, user.Name)
			}
			holder, err := tx.Users().GetById(ctx, open.UserID)
			if err != nil {
				return fmt.Errorf("get borrower: %w", err)
			}
			return domain.NewConflictError("Book %q is currently borrowed by user %q", book.Name, holder.Name)
		case !repository.IsNotFound(err):
			return fmt.Errorf("find open loan: %w", err)
		}

		loan = repository.Loan{UserID: user.ID, BookID: book.ID, BorrowDate: s.now()}
		if err := tx.Loans().Create(ctx, &loan); err != nil {
			if repository.IsUniqueViolation(err, repository.OpenLoanIndex) {
				return domain.NewConflictError("Book %q is currently borrowed by another user", book.Name)
			}
			return fmt.Errorf("create loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.BorrowResult{}, err
	}

	publish(ctx, s.publisher, events.NewMessage(events.TypeBookBorrowed, loan.ID, loan.UserID, loan.BookID, nil, loan.BorrowDate))
	return domain.BorrowResult{
		Message: messageBorrowed,
		BorrowRecord: domain.BorrowRecord{
			ID:         loan.ID,
			UserID:     loan.UserID,
			BookID:     loan.BookID,
			BorrowDate: loan.BorrowDate,
		},
	}, nil
}

// Return closes the open loan of userID and bookID, recording score when given.
func (s *UserService) Return(ctx context.Context, userID, bookID uint, score *int) (domain.ReturnResult, error) {
	var loan repository.Loan
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		user, book, err := loadUserAndBook(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}

		loan, err = tx.Loans().FindOpen(ctx, user.ID, book.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return domain.NewNotFoundError("No active borrow record found for user %q and book %q", user.Name, book.Name)
			}
			return fmt.Errorf("find open loan: %w", err)
		}

		if score != nil && (*score < 0 || *score > 10) {
			return domain.NewValidationError("Rating must be an integer between 0 and 10")
		}

		if err := tx.Loans().Close(ctx, &loan, s.now(), score); err != nil {
			if repository.IsNotFound(err) {
				return domain.NewNotFoundError("No active borrow record found for user %q and book %q", user.Name, book.Name)
			}
			return fmt.Errorf("close loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.ReturnResult{}, err
	}

	publish(ctx, s.publisher, events.NewMessage(events.TypeBookReturned, loan.ID, loan.UserID, loan.BookID, loan.Rate, *loan.ReturnDate))
	return domain.ReturnResult{
		Message: messageReturned,
		UpdatedRecord: domain.ReturnRecord{
			ID:         loan.ID,
			UserID:     loan.UserID,
			BookID:     loan.BookID,
			BorrowDate: loan.BorrowDate,
			ReturnDate: *loan.ReturnDate,
			Rate:       loan.Rate,
			UpdatedAt:  loan.UpdatedAt,
		},
	}, nil
}

// loadUserAndBook fetches both ends of a loan and locks the book row.
func loadUserAndBook(ctx context.Context, tx repository.Store, userID, bookID uint) (repository.User, repository.Book, error) {
	user, err := tx.Users().GetById(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.User{}, repository.Book{}, domain.NewNotFoundError("User with ID %d not found", userID)
		}
		return repository.User{}, repository.Book{}, fmt.Errorf("get user: %w", err)
	}
	book, err := tx.Books().GetByIdForUpdate(ctx, bookID)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.User{}, repository.Book{}, domain.NewNotFoundError("Book with ID %d not found", bookID)
		}
		return repository.User{}, repository.Book{}, fmt.Errorf("get book: %w", err)
	}
	return user, book, nil
}
