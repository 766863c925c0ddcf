package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"api": map[string]any{
			"baseUrl": "http://localhost:8086",
			"timeouts": map[string]any{
				"refreshTimeout": "10s",
			},
		},
		"notifications": map[string]any{
			"stalenessWindow": "1h",
		},
		"storage": map[string]any{
			"path": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "API_BASEURL", want: "api.baseUrl"},
		{envKey: "API_TIMEOUTS_REFRESHTIMEOUT", want: "api.timeouts.refreshTimeout"},
		{envKey: "NOTIFICATIONS_STALENESSWINDOW", want: "notifications.stalenessWindow"},
		{envKey: "STORAGE_PATH", want: "storage.path"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.API.GraphQLPath != "/query" {
		t.Fatalf("unexpected graphql path: %q", cfg.API.GraphQLPath)
	}
	if cfg.API.RefreshPath != "/refresh-token" {
		t.Fatalf("unexpected refresh path: %q", cfg.API.RefreshPath)
	}
	if cfg.API.MaxAuthRetries != 2 {
		t.Fatalf("unexpected retry ceiling: %d", cfg.API.MaxAuthRetries)
	}
	if cfg.Notifications.ReconcileInterval.Minutes() != 15 {
		t.Fatalf("unexpected reconcile interval: %v", cfg.Notifications.ReconcileInterval)
	}
	if cfg.Notifications.StalenessWindow.Hours() != 1 {
		t.Fatalf("unexpected staleness window: %v", cfg.Notifications.StalenessWindow)
	}
}
