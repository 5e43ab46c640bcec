package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"library/events"
	"library/repository"
)

// memStore is an in-memory repository.Store. Transactions snapshot the tables
// and restore them when the callback fails.
type memStore struct {
	mu    *sync.Mutex
	data  *memData
	inTx  bool
	clock func() time.Time

	// loanCreateErr, when set, is returned by the next Loans().Create.
	loanCreateErr error
}

type memData struct {
	users  []repository.User
	books  []repository.Book
	loans  []repository.Loan
	nextID uint
}

func newMemStore() *memStore {
	return &memStore{
		mu:    &sync.Mutex{},
		data:  &memData{},
		clock: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func (s *memStore) Users() repository.UserRepository { return memUsers{s} }
func (s *memStore) Books() repository.BookRepository { return memBooks{s} }
func (s *memStore) Loans() repository.LoanRepository { return memLoans{s} }

func (s *memStore) Transaction(_ context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := memData{
		users:  append([]repository.User(nil), s.data.users...),
		books:  append([]repository.Book(nil), s.data.books...),
		loans:  append([]repository.Loan(nil), s.data.loans...),
		nextID: s.data.nextID,
	}
	tx := *s
	tx.inTx = true
	err := fn(&tx)
	s.loanCreateErr = tx.loanCreateErr
	if err != nil {
		*s.data = snapshot
	}
	return err
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) id() uint {
	s.data.nextID++
	return s.data.nextID
}

func duplicateEntry(value, key string) error {
	return &mysql.MySQLError{
		Number:  1062,
		Message: fmt.Sprintf("Duplicate entry '%s' for key '%s'", value, key),
	}
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *repository.User) error {
	defer r.s.lock()()
	for _, u := range r.s.data.users {
		if u.Name == user.Name {
			return duplicateEntry(user.Name, "users."+repository.UserNameIndex)
		}
	}
	now := r.s.clock()
	user.ID, user.CreatedAt, user.UpdatedAt = r.s.id(), now, now
	r.s.data.users = append(r.s.data.users, *user)
	return nil
}

func (r memUsers) GetById(_ context.Context, userId uint) (repository.User, error) {
	defer r.s.lock()()
	return r.s.user(userId)
}

func (r memUsers) List(context.Context) ([]repository.User, error) {
	defer r.s.lock()()
	return append([]repository.User(nil), r.s.data.users...), nil
}

func (s *memStore) user(id uint) (repository.User, error) {
	for _, u := range s.data.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrRecordNotFound
}

type memBooks struct{ s *memStore }

func (r memBooks) Create(_ context.Context, book *repository.Book) error {
	defer r.s.lock()()
	for _, b := range r.s.data.books {
		if b.Name == book.Name {
			return duplicateEntry(book.Name, "books."+repository.BookNameIndex)
		}
	}
	now := r.s.clock()
	book.ID, book.CreatedAt, book.UpdatedAt = r.s.id(), now, now
	r.s.data.books = append(r.s.data.books, *book)
	return nil
}

func (r memBooks) GetById(_ context.Context, bookId uint) (repository.Book, error) {
	defer r.s.lock()()
	return r.s.book(bookId)
}

func (r memBooks) GetByIdForUpdate(ctx context.Context, bookId uint) (repository.Book, error) {
	return r.GetById(ctx, bookId)
}

func (r memBooks) List(context.Context) ([]repository.Book, error) {
	defer r.s.lock()()
	return append([]repository.Book(nil), r.s.data.books...), nil
}

func (s *memStore) book(id uint) (repository.Book, error) {
	for _, b := range s.data.books {
		if b.ID == id {
			return b, nil
		}
	}
	return repository.Book{}, repository.ErrRecordNotFound
}

type memLoans struct{ s *memStore }

func (r memLoans) Create(_ context.Context, loan *repository.Loan) error {
	defer r.s.lock()()
	if err := r.s.loanCreateErr; err != nil {
		r.s.loanCreateErr = nil
		return err
	}
	for _, l := range r.s.data.loans {
		if l.BookID == loan.BookID && l.Open() {
			return duplicateEntry(fmt.Sprint(loan.BookID), "borrow_list."+repository.OpenLoanIndex)
		}
	}
	now := r.s.clock()
	loan.ID, loan.CreatedAt, loan.UpdatedAt = r.s.id(), now, now
	r.s.data.loans = append(r.s.data.loans, *loan)
	return nil
}

func (r memLoans) FindOpenByBook(_ context.Context, bookId uint) (repository.Loan, error) {
	defer r.s.lock()()
	for _, l := range r.s.data.loans {
		if l.BookID == bookId && l.Open() {
			return l, nil
		}
	}
	return repository.Loan{}, repository.ErrRecordNotFound
}

func (r memLoans) FindOpen(_ context.Context, userId, bookId uint) (repository.Loan, error) {
	defer r.s.lock()()
	for _, l := range r.s.data.loans {
		if l.UserID == userId && l.BookID == bookId && l.Open() {
			return l, nil
		}
	}
	return repository.Loan{}, repository.ErrRecordNotFound
}

func (r memLoans) Close(_ context.Context, loan *repository.Loan, returnedAt time.Time, rate *int) error {
	defer r.s.lock()()
	for i, l := range r.s.data.loans {
		if l.ID != loan.ID || !l.Open() {
			continue
		}
		l.ReturnDate = &returnedAt
		l.UpdatedAt = returnedAt
		if rate != nil {
			v := *rate
			l.Rate = &v
		}
		r.s.data.loans[i] = l
		*loan = l
		return nil
	}
	return repository.ErrRecordNotFound
}

func (r memLoans) OpenLoansByUsers(_ context.Context, userIds ...uint) ([]repository.BorrowedBookRow, error) {
	defer r.s.lock()()
	var rows []repository.BorrowedBookRow
	for _, l := range r.s.data.loans {
		if !l.Open() || !contains(userIds, l.UserID) {
			continue
		}
		b, _ := r.s.book(l.BookID)
		rows = append(rows, repository.BorrowedBookRow{UserID: l.UserID, BookID: b.ID, BookName: b.Name, BorrowDate: l.BorrowDate})
	}
	return rows, nil
}

func (r memLoans) RecentReturnsByUsers(_ context.Context, limit int, userIds ...uint) ([]repository.ReturnedBookRow, error) {
	defer r.s.lock()()
	var closed []repository.Loan
	for _, l := range r.s.data.loans {
		if !l.Open() && contains(userIds, l.UserID) {
			closed = append(closed, l)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		if !closed[i].ReturnDate.Equal(*closed[j].ReturnDate) {
			return closed[i].ReturnDate.After(*closed[j].ReturnDate)
		}
		return closed[i].ID > closed[j].ID
	})
	var rows []repository.ReturnedBookRow
	perUser := map[uint]int{}
	for _, l := range closed {
		if perUser[l.UserID] == limit {
			continue
		}
		perUser[l.UserID]++
		b, _ := r.s.book(l.BookID)
		rows = append(rows, repository.ReturnedBookRow{
			UserID:     l.UserID,
			BookID:     b.ID,
			BookName:   b.Name,
			BorrowDate: l.BorrowDate,
			ReturnDate: *l.ReturnDate,
			Rate:       l.Rate,
		})
	}
	return rows, nil
}

func (r memLoans) RatingStats(_ context.Context, bookIds ...uint) ([]repository.RatingStat, error) {
	defer r.s.lock()()
	byBook := map[uint]*repository.RatingStat{}
	var stats []repository.RatingStat
	for _, l := range r.s.data.loans {
		if l.Rate == nil || !contains(bookIds, l.BookID) {
			continue
		}
		st, ok := byBook[l.BookID]
		if !ok {
			st = &repository.RatingStat{BookID: l.BookID}
			byBook[l.BookID] = st
		}
		st.Sum += float64(*l.Rate)
		st.Count++
	}
	for _, st := range byBook {
		stats = append(stats, *st)
	}
	return stats, nil
}

func (r memLoans) RatingsByBook(_ context.Context, bookId uint) ([]repository.RatingRow, error) {
	defer r.s.lock()()
	var rows []repository.RatingRow
	for _, l := range r.s.data.loans {
		if l.BookID != bookId || l.Rate == nil {
			continue
		}
		u, _ := r.s.user(l.UserID)
		rows = append(rows, repository.RatingRow{Rate: *l.Rate, UserID: u.ID, UserName: u.Name, ReturnDate: *l.ReturnDate})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ReturnDate.After(rows[j].ReturnDate) })
	return rows, nil
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// recordingPublisher keeps every published message.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []events.Message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, m events.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, m)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		types = append(types, m.Type)
	}
	return types
}
