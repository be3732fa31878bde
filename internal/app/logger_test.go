package app

import (
	"log/slog"
	"testing"
)

func TestNewLoggerFormatSelection(t *testing.T) {
	cases := []struct {
		name     string
		cfg      *Config
		wantJSON bool
	}{
		{"nil config", nil, false},
		{"development default", &Config{AppEnv: "development"}, false},
		{"production default", &Config{AppEnv: "production"}, true},
		{"production forced text", &Config{AppEnv: "production", LogFormat: "text"}, false},
		{"development forced json", &Config{AppEnv: "development", LogFormat: "json"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := NewLogger(tc.cfg)
			_, isJSON := logger.Handler().(*slog.JSONHandler)
			if isJSON != tc.wantJSON {
				t.Errorf("json handler = %v, want %v", isJSON, tc.wantJSON)
			}
		})
	}
}
