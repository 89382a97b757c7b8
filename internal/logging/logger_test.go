package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKeyRewritten(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, slog.LevelInfo)

	log.Error("write failed", "error", errors.New("nack"))

	assert.Contains(t, buf.String(), "err=nack")
	assert.NotContains(t, buf.String(), "error=")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, Level(false))

	log.Debug("hidden")
	log.Info("hidden too")
	assert.Empty(t, buf.String())

	log = NewWriter(&buf, Level(true))
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	NewNop().Error("discarded")
}
