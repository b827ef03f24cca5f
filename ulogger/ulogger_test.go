package ulogger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bsv-blockchain/indexprefix/settings"
	"github.com/bsv-blockchain/indexprefix/ulogger"
	"github.com/ordishs/gocore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level           string
		expectedOutputs map[string]bool
	}{
		{
			level: "DEBUG",
			expectedOutputs: map[string]bool{
				"DEBUG": true,
				"INFO":  true,
				"WARN":  true,
				"ERROR": true,
			},
		},
		{
			level: "INFO",
			expectedOutputs: map[string]bool{
				"DEBUG": false,
				"INFO":  true,
				"WARN":  true,
				"ERROR": true,
			},
		},
		{
			level: "WARN",
			expectedOutputs: map[string]bool{
				"DEBUG": false,
				"INFO":  false,
				"WARN":  true,
				"ERROR": true,
			},
		},
		{
			level: "ERROR",
			expectedOutputs: map[string]bool{
				"DEBUG": false,
				"INFO":  false,
				"WARN":  false,
				"ERROR": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer

			logger := ulogger.New("test-service", ulogger.WithLevel(tt.level), ulogger.WithWriter(&buf))

			logger.Debugf("DEBUG message")
			logger.Infof("INFO message")
			logger.Warnf("WARN message")
			logger.Errorf("ERROR message")

			output := buf.String()

			for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
				assert.Equal(t, tt.expectedOutputs[level], strings.Contains(output, level+" message"), "level %s", level)
			}
		})
	}
}

func TestZeroLoggerServiceName(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("prefixcopy", ulogger.WithWriter(&buf))
	logger.Infof("processed height %d of %d", 10, 20)

	assert.Contains(t, buf.String(), "prefixcopy")
	assert.Contains(t, buf.String(), "processed height 10 of 20")
}

func TestJSONLogging(t *testing.T) {
	gocore.Config().Set("PRETTY_LOGS", "false")
	defer gocore.Config().Unset("PRETTY_LOGS")

	var buf bytes.Buffer

	logger := ulogger.New("prefixcopy", ulogger.WithWriter(&buf))
	logger.Warnf("missing block index entry at height %d", 5)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"service":"prefixcopy"`)
	assert.Contains(t, out, `"message":"missing block index entry at height 5"`)
}

func TestNewChildLogger(t *testing.T) {
	var buf bytes.Buffer

	parent := ulogger.New("parent", ulogger.WithWriter(&buf), ulogger.WithLevel("WARN"))
	child := parent.New("child")

	child.Infof("hidden")
	child.Warnf("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Equal(t, parent.LogLevel(), child.LogLevel())
}

func TestDuplicateChangesLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("dup", ulogger.WithWriter(&buf), ulogger.WithLevel("INFO"))
	debugLogger := logger.Duplicate(ulogger.WithLevel("DEBUG"))

	logger.Debugf("not visible")
	debugLogger.Debugf("visible")

	assert.NotContains(t, buf.String(), "not visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Equal(t, int(gocore.DEBUG), debugLogger.LogLevel())
	assert.Equal(t, int(gocore.INFO), logger.LogLevel())
}

func TestNewGoCoreLogger(t *testing.T) {
	t.Run("with empty service name", func(t *testing.T) {
		require.NotNil(t, ulogger.NewGoCoreLogger(""))
	})

	t.Run("via New", func(t *testing.T) {
		logger := ulogger.New("gocore-service", ulogger.WithLoggerType("gocore"), ulogger.WithLevel("DEBUG"))
		_, ok := logger.(*ulogger.GoCoreLogger)
		require.True(t, ok)

		require.NotNil(t, logger.Duplicate(ulogger.WithSkipFrame(2)))
		require.NotNil(t, logger.New("child"))
	})
}

func TestInitLogger(t *testing.T) {
	tSettings := settings.NewSettings()
	tSettings.Logger.Type = "gocore"

	_, ok := ulogger.InitLogger("init", tSettings).(*ulogger.GoCoreLogger)
	assert.True(t, ok)

	tSettings.Logger.Type = "zerolog"
	_, ok = ulogger.InitLogger("init", tSettings).(*ulogger.ZLoggerWrapper)
	assert.True(t, ok)
}

func TestTestLoggers(t *testing.T) {
	var logger ulogger.Logger = ulogger.TestLogger{}
	logger.Infof("nothing happens")
	assert.Equal(t, logger, logger.New("x"))

	verbose := ulogger.NewVerboseTestLogger(t)
	verbose.New("child").Infof("routed to t.Logf")
	verbose.Warnf("also routed")
}
