package log

import (
	"bytes"
	stdlog "log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, DefaultLevel, ParseLevel(""))
	assert.Equal(t, DefaultLevel, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		level:  WarnLevel,
		logger: stdlog.New(&buf, "", 0),
	}

	logger.Log(InfoLevel, "hidden %d", 1)
	logger.Log(WarnLevel, "shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN: shown 2")
}
