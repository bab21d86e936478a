package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_AlphaOutOfRange(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Search:   SearchConfig{DefaultAlpha: 1.5},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for alpha > 1")
	}
}

func TestValidate_RerankWeightOutOfRange(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Rerank:   RerankConfig{Weight: -0.1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative rerank weight")
	}
}

func TestValidate_RerankRequiresLLMKey(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Rerank:   RerankConfig{Enabled: true},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for rerank enabled without llm.api_key")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Dimensions != 512 {
		t.Errorf("expected Dimensions=512, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.DefaultAlpha != 0.6 {
		t.Errorf("expected DefaultAlpha=0.6, got %g", cfg.Search.DefaultAlpha)
	}
	if cfg.Search.OverfetchMultiplier != 3 {
		t.Errorf("expected OverfetchMultiplier=3, got %d", cfg.Search.OverfetchMultiplier)
	}
	if cfg.Search.OverfetchMin != 30 {
		t.Errorf("expected OverfetchMin=30, got %d", cfg.Search.OverfetchMin)
	}
	if cfg.Search.BrowseFallback == nil || !*cfg.Search.BrowseFallback {
		t.Error("expected BrowseFallback default true")
	}
	if cfg.Rerank.Weight != 0.3 {
		t.Errorf("expected rerank Weight=0.3, got %g", cfg.Rerank.Weight)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("expected cache TTLSec=300, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
	if cfg.Storage.KeyPrefix != "tastefeed:" {
		t.Errorf("expected KeyPrefix='tastefeed:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	disabled := false
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Search:   SearchConfig{DefaultAlpha: 0.8, OverfetchMultiplier: 5, OverfetchMin: 50, BrowseFallback: &disabled},
		Index:    IndexConfig{HNSWM: 16, HNSWEFConstruct: 200},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.DefaultAlpha != 0.8 {
		t.Errorf("expected DefaultAlpha=0.8, got %g", cfg.Search.DefaultAlpha)
	}
	if cfg.Search.BrowseFallback == nil || *cfg.Search.BrowseFallback {
		t.Error("expected BrowseFallback to stay false")
	}
	if cfg.Index.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Index.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TF_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${TF_TEST_KEY}\nmodel: ${TF_TEST_MODEL:-clip-vit}")))
	want := "api_key: secret\nmodel: clip-vit"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
