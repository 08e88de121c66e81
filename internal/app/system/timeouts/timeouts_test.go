package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})

	if got := Short(); got != 7*time.Second {
		t.Errorf("Short: got %v, want %v", got, 7*time.Second)
	}
	if got := Medium(); got != DefaultMedium {
		t.Errorf("Medium: got %v, want %v", got, DefaultMedium)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(Reset)
	t.Setenv("TIMEOUT_PING", "750ms")
	t.Setenv("TIMEOUT_LONG", "1m")
	t.Setenv("TIMEOUT_MEDIUM", "not-a-duration")
	t.Setenv("TIMEOUT_SHORT", "-5s")

	if n := ConfigureFromEnv(); n != 2 {
		t.Errorf("ConfigureFromEnv applied %d values, want 2", n)
	}

	cur := Current()
	if cur.Ping != 750*time.Millisecond {
		t.Errorf("Ping: got %v, want 750ms", cur.Ping)
	}
	if cur.Long != time.Minute {
		t.Errorf("Long: got %v, want 1m", cur.Long)
	}
	if cur.Medium != DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", cur.Medium, DefaultMedium)
	}
	if cur.Short != DefaultShort {
		t.Errorf("Short: got %v, want default %v", cur.Short, DefaultShort)
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "slow op")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["operation"]; got != "slow op" {
		t.Errorf("operation field: got %v, want %q", got, "slow op")
	}
}

func TestWithTimeout_SilentOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "fast op")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
