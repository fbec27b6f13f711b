package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/domain/query"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, "", cfg.DBURL)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "", cfg.APIKeys)
	assert.Equal(t, "", cfg.HTTPCacheDir)

	assert.Equal(t, "", cfg.Entrez.BaseURL)
	assert.Equal(t, "taxseq", cfg.Entrez.Tool)
	assert.Equal(t, 60.0, cfg.Entrez.Timeout)
	assert.Equal(t, 3, cfg.Entrez.MaxRetries)
	assert.Equal(t, 1.0, cfg.Entrez.InitialDelay)
	assert.Equal(t, 2.0, cfg.Entrez.BackoffFactor)
	assert.Equal(t, 0.0, cfg.Entrez.RequestsPerSecond)

	assert.Equal(t, 100, cfg.Pipeline.BatchSize)
	assert.Equal(t, 0.4, cfg.Pipeline.BatchDelay)
	assert.Equal(t, 1, cfg.Pipeline.FilterParallelism)
	assert.Equal(t, "genbank", cfg.Pipeline.RecordFormat)
	assert.Equal(t, "skip_record", cfg.Pipeline.ParsePolicy)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	// Struct tag defaults must be literals; keep them in sync with the constants.
	clearEnvVars(t)

	env, err := LoadFromEnv()
	require.NoError(t, err)
	cfg, err := env.ToAppConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, env.Host)
	assert.Equal(t, DefaultPort, env.Port)
	assert.Equal(t, DefaultLogLevel, env.LogLevel)
	assert.Equal(t, DefaultOutputDir, env.OutputDir)
	assert.Equal(t, DefaultEntrezTool, env.Entrez.Tool)
	assert.Equal(t, DefaultEntrezTimeout, cfg.Entrez().Timeout())
	assert.Equal(t, DefaultEntrezMaxRetries, cfg.Entrez().MaxRetries())
	assert.Equal(t, DefaultEntrezInitialDelay, cfg.Entrez().InitialDelay())
	assert.Equal(t, DefaultEntrezBackoffFactor, cfg.Entrez().BackoffFactor())
	assert.Equal(t, DefaultBatchSize, cfg.Pipeline().BatchSize())
	assert.Equal(t, DefaultBatchDelay, cfg.Pipeline().BatchDelay())
	assert.Equal(t, DefaultFilterParallelism, cfg.Pipeline().FilterParallelism())
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/tmp/taxseq")
	t.Setenv("OUTPUT_DIR", "/tmp/reports")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("API_KEYS", "a, b")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/taxseq", cfg.DataDir)
	assert.Equal(t, "/tmp/reports", cfg.OutputDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "a, b", cfg.APIKeys)
}

func TestLoadFromEnv_Entrez(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("ENTREZ_BASE_URL", "http://localhost:9999/eutils/")
	t.Setenv("ENTREZ_EMAIL", "someone@example.org")
	t.Setenv("ENTREZ_API_KEY", "secret")
	t.Setenv("ENTREZ_TIMEOUT", "5.5")
	t.Setenv("ENTREZ_MAX_RETRIES", "7")
	t.Setenv("ENTREZ_REQUESTS_PER_SECOND", "-1")

	env, err := LoadFromEnv()
	require.NoError(t, err)

	entrez := env.Entrez.ToEntrezConfig()
	assert.Equal(t, "http://localhost:9999/eutils/", entrez.BaseURL())
	assert.Equal(t, "someone@example.org", entrez.Email())
	assert.Equal(t, "secret", entrez.APIKey())
	assert.Equal(t, "taxseq", entrez.Tool())
	assert.Equal(t, 5500*time.Millisecond, entrez.Timeout())
	assert.Equal(t, 7, entrez.MaxRetries())
	assert.Equal(t, -1.0, entrez.RequestsPerSecond())
}

func TestLoadFromEnv_Pipeline(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PIPELINE_BATCH_SIZE", "250")
	t.Setenv("PIPELINE_BATCH_DELAY", "0")
	t.Setenv("PIPELINE_FILTER_PARALLELISM", "4")
	t.Setenv("PIPELINE_RECORD_FORMAT", " FASTA ")
	t.Setenv("PIPELINE_PARSE_POLICY", "abort_batch")

	env, err := LoadFromEnv()
	require.NoError(t, err)

	pipeline, err := env.Normalize().Pipeline.ToPipelineConfig()
	require.NoError(t, err)

	assert.Equal(t, 250, pipeline.BatchSize())
	assert.Equal(t, time.Duration(0), pipeline.BatchDelay())
	assert.Equal(t, 4, pipeline.FilterParallelism())
	assert.Equal(t, query.RecordFormatFASTA, pipeline.RecordFormat())
	assert.Equal(t, query.ParsePolicyAbortBatch, pipeline.ParsePolicy())
}

func TestPipelineEnv_RejectsUnknownValues(t *testing.T) {
	_, err := PipelineEnv{RecordFormat: "embl"}.ToPipelineConfig()
	assert.Error(t, err)

	_, err = PipelineEnv{ParsePolicy: "ignore"}.ToPipelineConfig()
	assert.Error(t, err)
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	env := EnvConfig{
		Host:         "localhost",
		Port:         3000,
		DataDir:      "/custom/data",
		LogLevel:     "DEBUG",
		LogFormat:    "json",
		APIKeys:      "key1,key2",
		HTTPCacheDir: "/tmp/cache",
		Entrez:       EntrezEnv{Email: "x@example.org", Timeout: 10},
		Pipeline:     PipelineEnv{BatchSize: 50},
	}

	cfg, err := env.ToAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host())
	assert.Equal(t, 3000, cfg.Port())
	assert.Equal(t, "localhost:3000", cfg.Addr())
	assert.Equal(t, "/custom/data", cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join("/custom/data", "taxseq.db"), cfg.DBURL())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, []string{"key1", "key2"}, cfg.APIKeys())
	assert.Equal(t, "/tmp/cache", cfg.HTTPCacheDir())
	assert.Equal(t, "x@example.org", cfg.Entrez().Email())
	assert.Equal(t, 10*time.Second, cfg.Entrez().Timeout())
	assert.Equal(t, 50, cfg.Pipeline().BatchSize())
	assert.Equal(t, query.RecordFormatGenBank, cfg.Pipeline().RecordFormat())
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		input string
		want  LogFormat
	}{
		{"json", LogFormatJSON},
		{"JSON", LogFormatJSON},
		{"pretty", LogFormatPretty},
		{"", LogFormatPretty},
		{"other", LogFormatPretty},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogFormat(tt.input))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `DATA_DIR=/from/dotenv
LOG_LEVEL=DEBUG
ENTREZ_EMAIL=dotenv@example.org
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)

	require.NoError(t, LoadDotEnv(envFile))

	assert.Equal(t, "/from/dotenv", os.Getenv("DATA_DIR"))
	assert.Equal(t, "DEBUG", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "dotenv@example.org", os.Getenv("ENTREZ_EMAIL"))
}

func TestLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)

	assert.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestMustLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)

	assert.Error(t, MustLoadDotEnv("/nonexistent/.env"))
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `DATA_DIR=/config/data
LOG_LEVEL=WARN
PIPELINE_BATCH_SIZE=20
ENTREZ_API_KEY=abc
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	clearEnvVars(t)
	t.Setenv("LOG_LEVEL", "ERROR")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "/config/data", cfg.DataDir())
	assert.Equal(t, "ERROR", cfg.LogLevel(), "environment wins over .env")
	assert.Equal(t, 20, cfg.Pipeline().BatchSize())
	assert.Equal(t, "abc", cfg.Entrez().APIKey())
}

func TestLoadConfigStrict_MissingFile(t *testing.T) {
	clearEnvVars(t)

	_, err := LoadConfigStrict(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidPolicy(t *testing.T) {
	clearEnvVars(t)
	t.Setenv("PIPELINE_PARSE_POLICY", "sometimes")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "none.env"))
	assert.Error(t, err)
}

// clearEnvVars unsets all config-related environment variables and restores
// them when the test ends.
func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"HOST",
		"PORT",
		"DATA_DIR",
		"DB_URL",
		"OUTPUT_DIR",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"API_KEYS",
		"HTTP_CACHE_DIR",
		"ENTREZ_BASE_URL",
		"ENTREZ_EMAIL",
		"ENTREZ_API_KEY",
		"ENTREZ_TOOL",
		"ENTREZ_TIMEOUT",
		"ENTREZ_MAX_RETRIES",
		"ENTREZ_INITIAL_DELAY",
		"ENTREZ_BACKOFF_FACTOR",
		"ENTREZ_REQUESTS_PER_SECOND",
		"PIPELINE_BATCH_SIZE",
		"PIPELINE_BATCH_DELAY",
		"PIPELINE_FILTER_PARALLELISM",
		"PIPELINE_RECORD_FORMAT",
		"PIPELINE_PARSE_POLICY",
	}

	for _, v := range vars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
