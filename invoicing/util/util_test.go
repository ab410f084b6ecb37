package util

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestIsDebugEnabled_False(t *testing.T) {
	t.Setenv("SIMPLEINVOICING_DEBUG", "")
	res := DebugEnabled()
	assert.False(t, res, "debug should be false")
}

func TestIsDebugEnabled_True(t *testing.T) {

	t.Setenv("SIMPLEINVOICING_DEBUG", "true")

	log.SetFormatter(&log.TextFormatter{
		DisableColors: false,
		FullTimestamp: true,
		ForceColors:   true,
	})

	res := DebugEnabled()
	assert.True(t, res, "debug should be true")
}

func TestHttpTraceEnabled(t *testing.T) {
	t.Setenv("SIMPLEINVOICING_HTTP_TRACE", "1")
	assert.True(t, HttpTraceEnabled())

	t.Setenv("SIMPLEINVOICING_HTTP_TRACE", "nope")
	assert.False(t, HttpTraceEnabled())
}
