package config

import (
	"os"
	"path/filepath"
	"testing"

	gberrors "github.com/graphbench/graphbench/internal/errors"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.RawDir != filepath.Join("data", "raw") && cfg.RawDir != filepath.Join("./data", "raw") {
		t.Errorf("unexpected raw dir %q", cfg.RawDir)
	}
	if cfg.Neo4j.BatchSize != 500_000 {
		t.Errorf("batch size = %d, want 500000", cfg.Neo4j.BatchSize)
	}
	ref, err := cfg.Generate.Reference()
	if err != nil || ref.Year() != 2024 {
		t.Errorf("reference date = %v, %v", ref, err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "parquet" }},
		{"reference date", func(c *Config) { c.Generate.ReferenceDate = "01/01/2024" }},
		{"no countries", func(c *Config) { c.Generate.Countries = nil }},
		{"batch size", func(c *Config) { c.Neo4j.BatchSize = 0 }},
		{"interest bounds", func(c *Config) { c.Generate.MinInterests, c.Generate.MaxInterests = 4, 2 }},
		{"storage type", func(c *Config) { c.Storage.Type = "gcs" }},
		{"s3 bucket", func(c *Config) { c.Storage.Type = "s3" }},
		{"rounds", func(c *Config) { c.Bench.Rounds = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if gberrors.GetCategory(err) != gberrors.ErrCategoryValidation {
				t.Errorf("category = %s, want VALIDATION", gberrors.GetCategory(err))
			}
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphbench.yaml")
	body := `
data_dir: /tmp/gb
seed: 7
generate:
  persons: 500
  countries: [GB]
neo4j:
  batch_size: 1000
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.DataDir != "/tmp/gb" || cfg.Seed != 7 || cfg.Generate.Persons != 500 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Generate.Countries) != 1 || cfg.Generate.Countries[0] != "GB" {
		t.Errorf("countries = %v", cfg.Generate.Countries)
	}
	// Unset fields keep their defaults.
	if cfg.Generate.MinPopulation != 1_000_000 {
		t.Errorf("min population = %d", cfg.Generate.MinPopulation)
	}
}

func TestLoadFromFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphbench.toml")
	if err := os.WriteFile(path, []byte("seed = 1"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for .toml")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://db:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("GRAPHBENCH_SEED", "99")
	t.Setenv("GRAPHBENCH_COUNTRIES", "US, CA")
	t.Setenv("GRAPHBENCH_BATCH_SIZE", "250")
	t.Setenv("GRAPHBENCH_S3_PATH_STYLE", "1")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.Neo4j.URI != "neo4j://db:7687" || cfg.Neo4j.Password != "secret" {
		t.Errorf("neo4j env not applied: %+v", cfg.Neo4j)
	}
	if cfg.Seed != 99 {
		t.Errorf("seed = %d", cfg.Seed)
	}
	if len(cfg.Generate.Countries) != 2 || cfg.Generate.Countries[1] != "CA" {
		t.Errorf("countries = %v", cfg.Generate.Countries)
	}
	if cfg.Neo4j.BatchSize != 250 {
		t.Errorf("batch size = %d", cfg.Neo4j.BatchSize)
	}
	if !cfg.Storage.S3.UsePathStyle {
		t.Error("expected path style")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GRAPHBENCH_TEST_DOTENV=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GRAPHBENCH_TEST_DOTENV") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("GRAPHBENCH_TEST_DOTENV"); got != "loaded" {
		t.Errorf("env = %q", got)
	}
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}
}

func TestParseBackend(t *testing.T) {
	if b, err := ParseBackend("embedded"); err != nil || b != BackendEmbedded {
		t.Errorf("ParseBackend(embedded) = %v, %v", b, err)
	}
	if _, err := ParseBackend("kuzu"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
