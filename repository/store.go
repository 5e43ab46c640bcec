package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle, so a caller
// can run several of them inside a single transaction.
type Store interface {
	Users() UserRepository
	Books() BookRepository
	Loans() LoanRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	database *gorm.DB
}

func (s *store) Users() UserRepository { return NewUserRepo(s.database) }
func (s *store) Books() BookRepository { return NewBookRepo(s.database) }
func (s *store) Loans() LoanRepository { return NewLoanRepo(s.database) }

func (s *store) Transaction(ctx context.Context, fn func(tx Store) error) (err error) {
	tx := s.database.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		if err != nil {
			tx.Rollback()
		}
	}()
	if err = fn(&store{database: tx}); err != nil {
		return err
	}
	return tx.Commit().Error
}

func NewStore(db *gorm.DB) Store {
	return &store{database: db}
}
