package goroutine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.ErrorLevel)
	return zap.New(core).Sugar(), logs
}

func TestRecover_NoPanic(t *testing.T) {
	logger, logs := observedLogger()

	func() {
		defer Recover("quiet", logger)
	}()

	assert.Equal(t, 0, logs.Len())
}

func TestRecover_LogsPanic(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  interface{}
	}{
		{"string", "boom", "boom"},
		{"int", 42, int64(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observedLogger()

			func() {
				defer Recover("api-server", logger)
				panic(tt.value)
			}()

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, "Goroutine panic recovered", entries[0].Message)

			fields := entries[0].ContextMap()
			assert.Equal(t, "api-server", fields["goroutine"])
			assert.Equal(t, tt.want, fields["panic"])
			stack, ok := fields["stack"].(string)
			require.True(t, ok)
			assert.Contains(t, stack, "goroutine")
		})
	}
}

func TestRecover_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recover("no-logger", nil)
		panic("still recorded on stderr")
	})
}

func TestRecoverWith_CallsBack(t *testing.T) {
	logger, logs := observedLogger()
	var got interface{}

	func() {
		defer RecoverWith("handler", logger, func(v interface{}) { got = v })
		panic("handler failed")
	}()

	assert.Equal(t, "handler failed", got)
	assert.Equal(t, 1, logs.Len())
}

func TestRecoverWith_NoPanicNoCallback(t *testing.T) {
	called := false
	func() {
		defer RecoverWith("handler", nil, func(interface{}) { called = true })
	}()
	assert.False(t, called)
}

func TestGo_RecoversAndWaits(t *testing.T) {
	AssertNoLeaks(t)
	logger, logs := observedLogger()

	var wg sync.WaitGroup
	ran := make(chan struct{}, 2)

	Go(&wg, "worker-ok", logger, func() { ran <- struct{}{} })
	Go(&wg, "worker-panic", logger, func() {
		ran <- struct{}{}
		panic("worker crashed")
	})
	wg.Wait()

	assert.Len(t, ran, 2)
	entries := logs.FilterField(zap.String("goroutine", "worker-panic")).All()
	assert.Len(t, entries, 1)
}
