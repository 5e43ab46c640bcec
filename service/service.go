package service

import (
	"context"
	"math"
	"strconv"
	"time"

	"library/domain"
	"library/events"
	"library/log"
	"library/repository"
)

// recentReturnsLimit is how many closed loans are listed per user.
const recentReturnsLimit = 5

func utcNow() time.Time {
	return time.Now().UTC()
}

// publish runs after the loan change is committed, so a failure is only logged.
func publish(ctx context.Context, p events.Publisher, m events.Message) {
	if err := p.Publish(ctx, m); err != nil {
		log.GetLogger(ctx).WithError(err).Errorf("publish %s event for loan %d failed", m.Type, m.LoanID)
	}
}

// averageRating returns the mean rate rounded half away from zero to one decimal,
// or nil when the book has never been rated.
func averageRating(stat repository.RatingStat) *string {
	if stat.Count == 0 {
		return nil
	}
	tenths := math.Round(stat.Sum * 10 / float64(stat.Count))
	s := strconv.FormatFloat(tenths/10, 'f', 1, 64)
	return &s
}

func toUser(u repository.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Field:     u.Field,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toBook(b repository.Book) domain.Book {
	return domain.Book{
		ID:        b.ID,
		Name:      b.Name,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
