package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqPinger struct {
	mu         sync.Mutex
	sequence   []error
	defaultErr error
	calls      int
}

func (p *seqPinger) PingContext(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	idx := p.calls - 1
	if idx < len(p.sequence) {
		return p.sequence[idx]
	}
	return p.defaultErr
}

func (p *seqPinger) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func Test_WaitForDatabase_SucceedsAfterRetries(t *testing.T) {
	p := &seqPinger{
		sequence: []error{
			errors.New("connection refused"),
			errors.New("connection refused"),
			nil,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := WaitForDatabase(ctx, p, 10*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, p.CallCount())
}

func Test_WaitForDatabase_Timeout(t *testing.T) {
	p := &seqPinger{defaultErr: errors.New("connection refused")}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	err := WaitForDatabase(ctx, p, 10*time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not ready before timeout")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, p.CallCount(), 2)
}
