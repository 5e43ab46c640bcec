package events

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const (
	TypeBookBorrowed string = "book.borrowed"
	TypeBookReturned string = "book.returned"
)

// Message describes a committed change of a loan.
type Message struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	LoanID     uint      `json:"loan_id"`
	UserID     uint      `json:"user_id"`
	BookID     uint      `json:"book_id"`
	Rate       *int      `json:"rate,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewMessage(kind string, loanID, userID, bookID uint, rate *int, occurredAt time.Time) Message {
	return Message{
		ID:         uuid.New().String(),
		Type:       kind,
		LoanID:     loanID,
		UserID:     userID,
		BookID:     bookID,
		Rate:       rate,
		OccurredAt: occurredAt,
	}
}

// MarshalBinary lets the redis client publish a Message directly.
func (m Message) MarshalBinary() ([]byte, error) {
	return sonic.Marshal(m)
}

func Decode(payload []byte) (Message, error) {
	m := Message{}
	err := sonic.Unmarshal(payload, &m)
	return m, err
}
