package daemon

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("FOCUSRPG_HOME", t.TempDir())

	cfg := DefaultConfig()
	if cfg.API.Host != "127.0.0.1" || cfg.API.Port != 7177 {
		t.Errorf("api defaults = %s:%d", cfg.API.Host, cfg.API.Port)
	}
	if cfg.OracleTimeout() != 10*time.Second {
		t.Errorf("oracle timeout = %v, want 10s", cfg.OracleTimeout())
	}
	if cfg.TickInterval() != time.Second {
		t.Errorf("tick interval = %v, want 1s", cfg.TickInterval())
	}
	if cfg.Data.Dir == "" {
		t.Error("data dir must default to the focusrpg home")
	}
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("FOCUSRPG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.Port = 9000
	cfg.Oracle.Endpoint = "http://localhost:8080/graphql"
	cfg.Oracle.TimeoutSeconds = 3
	cfg.Engine.TickSeconds = 5
	cfg.Logging.Level = "debug"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.API.Port != 9000 {
		t.Errorf("port = %d, want 9000", loaded.API.Port)
	}
	if loaded.Oracle.Endpoint != cfg.Oracle.Endpoint {
		t.Errorf("endpoint = %q", loaded.Oracle.Endpoint)
	}
	if loaded.OracleTimeout() != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", loaded.OracleTimeout())
	}
	if loaded.TickInterval() != 5*time.Second {
		t.Errorf("tick = %v, want 5s", loaded.TickInterval())
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", loaded.Logging.Level)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("FOCUSRPG_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 7177 {
		t.Errorf("port = %d, want default 7177", cfg.API.Port)
	}
}

func TestTimeoutClampsNonPositive(t *testing.T) {
	cfg := Config{}
	if cfg.OracleTimeout() != 10*time.Second {
		t.Errorf("zero timeout = %v, want 10s fallback", cfg.OracleTimeout())
	}
	if cfg.TickInterval() != time.Second {
		t.Errorf("zero tick = %v, want 1s fallback", cfg.TickInterval())
	}
}
