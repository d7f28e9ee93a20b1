// Package config provides unified configuration for the graphbench commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/graphbench/graphbench/internal/dataset"
	gberrors "github.com/graphbench/graphbench/internal/errors"
)

// Backend names a graph database engine.
type Backend string

const (
	BackendNeo4j    Backend = "neo4j"
	BackendEmbedded Backend = "embedded"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendNeo4j, BackendEmbedded:
		return Backend(s), nil
	}
	return "", gberrors.NewValidationError(gberrors.CodeInvalidConfig,
		fmt.Sprintf("invalid backend: %s (must be neo4j or embedded)", s))
}

// Config holds the unified configuration for all graphbench commands.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// RawDir holds the reference inputs (worldcities.csv, interests.csv)
	RawDir string `json:"raw_dir" yaml:"raw_dir"`

	// OutputDir is the dataset root the generators write to
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Seed is the default generator seed
	Seed uint64 `json:"seed" yaml:"seed"`

	// Format selects the table encodings written: csv, columnar, both
	Format string `json:"format" yaml:"format"`

	// Generator configuration
	Generate GenerateConfig `json:"generate" yaml:"generate"`

	// Neo4j backend configuration
	Neo4j Neo4jConfig `json:"neo4j" yaml:"neo4j"`

	// Embedded backend configuration
	Embedded EmbeddedConfig `json:"embedded" yaml:"embedded"`

	// Benchmark configuration
	Bench BenchConfig `json:"bench" yaml:"bench"`

	// Storage configuration for dataset publishing
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Log configuration
	Log LogConfig `json:"log" yaml:"log"`
}

// GenerateConfig holds dataset generator settings.
type GenerateConfig struct {
	// Persons is the number of person profiles
	Persons int `json:"persons" yaml:"persons"`

	// ReferenceDate is the date ages are computed against (YYYY-MM-DD)
	ReferenceDate string `json:"reference_date" yaml:"reference_date"`

	// Countries lists the ISO-2 codes kept from the world-cities file
	Countries []string `json:"countries" yaml:"countries"`

	// MinPopulation is the smallest city population kept
	MinPopulation int64 `json:"min_population" yaml:"min_population"`

	// LocationLimit keeps only the first N filtered cities (0 = all)
	LocationLimit int `json:"location_limit" yaml:"location_limit"`

	// EdgeLimit truncates every generated edge table
	EdgeLimit int `json:"edge_limit" yaml:"edge_limit"`

	// SuperNodePermille is the share of persons chosen as super nodes
	SuperNodePermille int `json:"super_node_permille" yaml:"super_node_permille"`

	// MinFollowerPermille is the lower follower bound per super node
	MinFollowerPermille int `json:"min_follower_permille" yaml:"min_follower_permille"`

	// MaxFollowerPercent is the exclusive upper follower bound per super node
	MaxFollowerPercent int `json:"max_follower_percent" yaml:"max_follower_percent"`

	// MinInterests is the smallest interest count per person
	MinInterests int `json:"min_interests" yaml:"min_interests"`

	// MaxInterests is the exclusive upper interest count per person
	MaxInterests int `json:"max_interests" yaml:"max_interests"`
}

// Reference parses ReferenceDate.
func (g GenerateConfig) Reference() (time.Time, error) {
	return time.Parse("2006-01-02", g.ReferenceDate)
}

// Neo4jConfig holds the server backend connection settings.
type Neo4jConfig struct {
	// URI is the bolt or neo4j URI
	URI string `json:"uri" yaml:"uri"`

	// User is the basic-auth user
	User string `json:"user" yaml:"user"`

	// Password is the basic-auth password
	Password string `json:"password" yaml:"password"`

	// Database is the target database name (empty = server default)
	Database string `json:"database" yaml:"database"`

	// BatchSize is the number of rows per write transaction for chunked tables
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MaxPool is the driver connection pool size (0 = driver default)
	MaxPool int `json:"max_pool" yaml:"max_pool"`
}

// EmbeddedConfig holds the filesystem backend settings.
type EmbeddedConfig struct {
	// Path is the database file
	Path string `json:"path" yaml:"path"`

	// Threads caps SQLite helper threads (0 = SQLite default)
	Threads int `json:"threads" yaml:"threads"`
}

// BenchConfig holds benchmark harness settings.
type BenchConfig struct {
	// Warmup is the number of untimed runs per query
	Warmup int `json:"warmup" yaml:"warmup"`

	// Rounds is the number of timed runs per query
	Rounds int `json:"rounds" yaml:"rounds"`

	// Golden is the expectations file (empty = no assertions)
	Golden string `json:"golden" yaml:"golden"`

	// Report is the JSON report path (empty = none)
	Report string `json:"report" yaml:"report"`

	// MetricsOut is the Prometheus text file path (empty = none)
	MetricsOut string `json:"metrics_out" yaml:"metrics_out"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// Prefix is prepended to every object path
	Prefix string `json:"prefix" yaml:"prefix"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle forces path-style addressing (MinIO and friends)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `json:"level" yaml:"level"`

	// Format is console or json
	Format string `json:"format" yaml:"format"`
}

// DefaultConfig returns the default configuration for local runs.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Seed:    0,
		Format:  string(dataset.FormatBoth),
		Generate: GenerateConfig{
			Persons:             10000,
			ReferenceDate:       "2024-01-01",
			Countries:           []string{"US", "GB", "CA"},
			MinPopulation:       1_000_000,
			LocationLimit:       0,
			EdgeLimit:           1_000_000_000,
			SuperNodePermille:   5,
			MinFollowerPermille: 5,
			MaxFollowerPercent:  5,
			MinInterests:        1,
			MaxInterests:        5,
		},
		Neo4j: Neo4jConfig{
			URI:       "bolt://localhost:7687",
			User:      "neo4j",
			BatchSize: 500_000,
		},
		Bench: BenchConfig{
			Warmup: 1,
			Rounds: 5,
		},
		Storage: StorageConfig{
			Type:   "local",
			Prefix: "datasets",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.RawDir == "" {
		c.RawDir = filepath.Join(c.DataDir, "raw")
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.DataDir, "output")
	}
	if c.Embedded.Path == "" {
		c.Embedded.Path = filepath.Join(c.DataDir, "graph.db")
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
}

// Layout returns the dataset layout of the output directory.
func (c *Config) Layout() dataset.Layout {
	return dataset.NewLayout(c.OutputDir)
}

// CitiesFile returns the world-cities reference path.
func (c *Config) CitiesFile() string {
	return filepath.Join(c.RawDir, "worldcities.csv")
}

// InterestsFile returns the interests reference path.
func (c *Config) InterestsFile() string {
	return filepath.Join(c.RawDir, "interests.csv")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return gberrors.NewValidationError(gberrors.CodeInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.DataDir == "" {
		return invalid("data_dir is required")
	}
	if _, err := dataset.ParseFormat(c.Format); err != nil {
		return err
	}

	g := c.Generate
	if g.Persons < 0 {
		return invalid("generate.persons must be non-negative, got %d", g.Persons)
	}
	if _, err := g.Reference(); err != nil {
		return invalid("generate.reference_date %q is not YYYY-MM-DD", g.ReferenceDate)
	}
	if len(g.Countries) == 0 {
		return invalid("generate.countries must list at least one ISO-2 code")
	}
	if g.EdgeLimit < 0 || g.LocationLimit < 0 {
		return invalid("generate limits must be non-negative")
	}
	if g.SuperNodePermille < 0 || g.SuperNodePermille > 1000 {
		return invalid("generate.super_node_permille must be between 0 and 1000, got %d", g.SuperNodePermille)
	}
	if g.MinFollowerPermille < 0 || g.MaxFollowerPercent < 0 || g.MaxFollowerPercent > 100 {
		return invalid("generate follower bounds out of range")
	}
	if g.MinInterests < 0 || g.MaxInterests < g.MinInterests {
		return invalid("generate.max_interests (%d) must not be below min_interests (%d)", g.MaxInterests, g.MinInterests)
	}

	if c.Neo4j.BatchSize <= 0 {
		return invalid("neo4j.batch_size must be positive, got %d", c.Neo4j.BatchSize)
	}
	if c.Bench.Rounds <= 0 || c.Bench.Warmup < 0 {
		return invalid("bench.rounds must be positive and bench.warmup non-negative")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return invalid("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return invalid("s3.bucket is required when storage type is s3")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Neo4j credentials use the NEO4J_ prefix, everything else GRAPHBENCH_.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		cfg.Neo4j.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Neo4j.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		cfg.Neo4j.Database = v
	}

	if v := os.Getenv("GRAPHBENCH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("GRAPHBENCH_RAW_DIR"); v != "" {
		cfg.RawDir = v
	}
	if v := os.Getenv("GRAPHBENCH_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("GRAPHBENCH_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("GRAPHBENCH_FORMAT"); v != "" {
		cfg.Format = v
	}

	// Generator configuration
	if v := os.Getenv("GRAPHBENCH_PERSONS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Generate.Persons)
	}
	if v := os.Getenv("GRAPHBENCH_REFERENCE_DATE"); v != "" {
		cfg.Generate.ReferenceDate = v
	}
	if v := os.Getenv("GRAPHBENCH_COUNTRIES"); v != "" {
		cfg.Generate.Countries = splitList(v)
	}
	if v := os.Getenv("GRAPHBENCH_MIN_POPULATION"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Generate.MinPopulation)
	}

	// Backend configuration
	if v := os.Getenv("GRAPHBENCH_BATCH_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Neo4j.BatchSize)
	}
	if v := os.Getenv("GRAPHBENCH_NEO4J_MAX_POOL"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Neo4j.MaxPool)
	}
	if v := os.Getenv("GRAPHBENCH_EMBEDDED_PATH"); v != "" {
		cfg.Embedded.Path = v
	}
	if v := os.Getenv("GRAPHBENCH_EMBEDDED_THREADS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Embedded.Threads)
	}

	// Bench configuration
	if v := os.Getenv("GRAPHBENCH_BENCH_WARMUP"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Bench.Warmup)
	}
	if v := os.Getenv("GRAPHBENCH_BENCH_ROUNDS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Bench.Rounds)
	}
	if v := os.Getenv("GRAPHBENCH_BENCH_GOLDEN"); v != "" {
		cfg.Bench.Golden = v
	}

	// Storage configuration
	if v := os.Getenv("GRAPHBENCH_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("GRAPHBENCH_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("GRAPHBENCH_STORAGE_PREFIX"); v != "" {
		cfg.Storage.Prefix = v
	}
	if v := os.Getenv("GRAPHBENCH_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("GRAPHBENCH_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("GRAPHBENCH_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("GRAPHBENCH_S3_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}

	// Log configuration
	if v := os.Getenv("GRAPHBENCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GRAPHBENCH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.OutputDir,
		filepath.Dir(c.Embedded.Path),
	}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
