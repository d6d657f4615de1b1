package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "NEARBY_MAX_RADIUS_KM")
	unsetEnvWithCleanup(t, "NEARBY_DEFAULT_RADIUS_KM")
	unsetEnvWithCleanup(t, "NEARBY_MAX_RESULTS")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.NearbyMaxRadiusKm != 100 {
		t.Fatalf("expected default radius ceiling 100, got %f", cfg.NearbyMaxRadiusKm)
	}
	if cfg.NearbyDefaultRadius != 10 {
		t.Fatalf("expected default radius 10, got %f", cfg.NearbyDefaultRadius)
	}
	if cfg.NearbyMaxResults != 200 {
		t.Fatalf("expected default result ceiling 200, got %d", cfg.NearbyMaxResults)
	}
	if cfg.PaymentCurrency != "EUR" {
		t.Fatalf("expected default currency EUR, got %q", cfg.PaymentCurrency)
	}
	if cfg.SubscriptionLapseSchedule != "*/15 * * * *" {
		t.Fatalf("expected default lapse schedule, got %q", cfg.SubscriptionLapseSchedule)
	}
}

func TestLoadConfig_UsesPortAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	setEnvWithCleanup(t, "PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Fatalf("expected PORT alias to apply, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_ServerPortTakesPrecedenceOverAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8081")
	setEnvWithCleanup(t, "PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8081" {
		t.Fatalf("expected SERVER_PORT to win over PORT, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_ReadsEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "MOLLIE_API_KEY", "live_abc123")
	setEnvWithCleanup(t, "NEARBY_MAX_RADIUS_KM", "50")
	setEnvWithCleanup(t, "NEARBY_RATE_LIMIT_PER_MINUTE", "30")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.MollieAPIKey != "live_abc123" {
		t.Fatalf("expected MOLLIE_API_KEY from env, got %q", cfg.MollieAPIKey)
	}
	if cfg.NearbyMaxRadiusKm != 50 {
		t.Fatalf("expected overridden radius ceiling 50, got %f", cfg.NearbyMaxRadiusKm)
	}
	if cfg.NearbyRateLimitPerMinute != 30 {
		t.Fatalf("expected overridden rate limit 30, got %d", cfg.NearbyRateLimitPerMinute)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}
