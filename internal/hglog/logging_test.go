package hglog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_DiscardsByDefault(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		Default().Info("should be discarded")
	})
}

func TestSetLogger_RoutesToInjectedHandler(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Default().Info("hello", slog.String("component", "search"))
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "component=search")
}
