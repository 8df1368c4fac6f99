package resilience

import (
	"context"
	"testing"
	"time"
)

func TestDefaultTimeoutHierarchy(t *testing.T) {
	config := DefaultTimeoutConfig()

	ordered := config.Command > config.Service &&
		config.Service > config.ExternalAPI &&
		config.ExternalAPI > config.SingleRetry
	if !ordered {
		t.Errorf("timeouts must narrow from command to retry: command=%v service=%v external=%v retry=%v",
			config.Command, config.Service, config.ExternalAPI, config.SingleRetry)
	}

	if config.ExternalAPI != 30*time.Second {
		t.Errorf("ExternalAPI = %v, want 30s", config.ExternalAPI)
	}
}

func TestTestTimeoutConfigStaysShort(t *testing.T) {
	config := TestTimeoutConfig()

	if config.Command >= 10*time.Second {
		t.Errorf("test command timeout = %v, want < 10s", config.Command)
	}
	if config.Command <= config.Service || config.Service <= config.ExternalAPI {
		t.Errorf("test timeouts lost their ordering: command=%v service=%v external=%v",
			config.Command, config.Service, config.ExternalAPI)
	}
}

func TestContextHelpersApplyDeadlines(t *testing.T) {
	config := DefaultTimeoutConfig()

	helpers := []struct {
		name    string
		timeout time.Duration
		derive  func(context.Context) (context.Context, context.CancelFunc)
	}{
		{"command", config.Command, config.CommandContext},
		{"service", config.Service, config.ServiceContext},
		{"external", config.ExternalAPI, config.ExternalAPIContext},
		{"retry", config.SingleRetry, config.RetryAttemptContext},
	}

	for _, h := range helpers {
		ctx, cancel := h.derive(context.Background())

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Errorf("%s context has no deadline", h.name)
			cancel()
			continue
		}

		want := time.Now().Add(h.timeout)
		if diff := deadline.Sub(want).Abs(); diff > 100*time.Millisecond {
			t.Errorf("%s deadline off by %v", h.name, diff)
		}
		cancel()
	}
}
