package log

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_GetLogger_FallsBackToRoot(t *testing.T) {
	entry := GetLogger(context.Background())

	require.NotNil(t, entry)
	assert.Same(t, Root(), entry.Logger)
	assert.Empty(t, entry.Data)
}

func Test_GetLogger_ReturnsStoredEntry(t *testing.T) {
	stored := logrus.NewEntry(Root()).WithField("request_id", "abc")
	ctx := WithLogger(context.Background(), stored)

	assert.Same(t, stored, GetLogger(ctx))
}

func Test_Configure(t *testing.T) {
	defer func() { _ = Configure("info", "text") }()

	require.NoError(t, Configure("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, Root().GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Root().Formatter)

	assert.Error(t, Configure("loud", "text"))
	assert.Error(t, Configure("info", "xml"))
}
