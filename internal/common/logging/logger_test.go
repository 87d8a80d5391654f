package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedReturnsSameLogger(t *testing.T) {
	assert.Same(t, Named("test-same"), Named("test-same"))
	assert.NotSame(t, Named("test-a"), Named("test-b"))
}

func TestSetLevel(t *testing.T) {
	l := Named("test-level")
	t.Cleanup(func() { _ = SetLevel("info") })

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.Equal(t, logrus.DebugLevel, Named("test-level-late").GetLevel())

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestFormatterPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := Named("test-format")
	l.SetOutput(&buf)

	l.WithField("sector_id", 3).Warn("sector dropped")

	out := buf.String()
	assert.Contains(t, out, "[test-format logger_test.go:")
	assert.Contains(t, out, "sector dropped")
	assert.Contains(t, out, "sector_id=3")
}
