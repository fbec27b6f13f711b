package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helixml/taxseq/domain/query"
)

func TestAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	assert.Equal(t, DefaultHost, cfg.Host())
	assert.Equal(t, DefaultPort, cfg.Port())
	assert.Equal(t, DefaultDataDir(), cfg.DataDir())
	assert.Equal(t, "sqlite:///"+filepath.Join(DefaultDataDir(), "taxseq.db"), cfg.DBURL())
	assert.Equal(t, ".", cfg.OutputDir())
	assert.Equal(t, LogFormatPretty, cfg.LogFormat())
	assert.Empty(t, cfg.APIKeys())
	assert.Empty(t, cfg.HTTPCacheDir())
	assert.Equal(t, "", cfg.Entrez().BaseURL())
	assert.Equal(t, "taxseq", cfg.Entrez().Tool())
	assert.Equal(t, 100, cfg.Pipeline().BatchSize())
	assert.Equal(t, 400*time.Millisecond, cfg.Pipeline().BatchDelay())
	assert.Equal(t, query.ParsePolicySkipRecord, cfg.Pipeline().ParsePolicy())
}

func TestAppConfig_WithOptions(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithHost("localhost"),
		WithPort(9000),
		WithDBURL("postgres://user:pass@db/taxseq"),
		WithOutputDir("/out"),
		WithLogLevel("DEBUG"),
		WithLogFormat(LogFormatJSON),
		WithHTTPCacheDir("/cache"),
		WithEntrez(NewEntrezConfig(WithEntrezEmail("a@b.c"), WithEntrezMaxRetries(1))),
		WithPipeline(NewPipelineConfig().WithBatchSize(10).WithRecordFormat(query.RecordFormatFASTA)),
	)

	assert.Equal(t, "localhost:9000", cfg.Addr())
	assert.Equal(t, "postgres://user:pass@db/taxseq", cfg.DBURL())
	assert.Equal(t, "/out", cfg.OutputDir())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "/cache", cfg.HTTPCacheDir())
	assert.Equal(t, "a@b.c", cfg.Entrez().Email())
	assert.Equal(t, 1, cfg.Entrez().MaxRetries())
	assert.Equal(t, DefaultEntrezTimeout, cfg.Entrez().Timeout())
	assert.Equal(t, 10, cfg.Pipeline().BatchSize())
	assert.Equal(t, query.RecordFormatFASTA, cfg.Pipeline().RecordFormat())
}

func TestAppConfig_Apply_LeavesReceiver(t *testing.T) {
	base := NewAppConfig()
	changed := base.Apply(WithPort(1234))

	assert.Equal(t, DefaultPort, base.Port())
	assert.Equal(t, 1234, changed.Port())
}

func TestAppConfig_APIKeys_Copy(t *testing.T) {
	keys := []string{"one", "two"}
	cfg := NewAppConfigWithOptions(WithAPIKeys(keys))
	keys[0] = "mutated"

	got := cfg.APIKeys()
	got[1] = "mutated"

	assert.Equal(t, []string{"one", "two"}, cfg.APIKeys())
}

func TestAppConfig_DataDirUpdatesDBURL(t *testing.T) {
	cfg := NewAppConfigWithOptions(WithDataDir("/data"))
	assert.Equal(t, "sqlite:///"+filepath.Join("/data", "taxseq.db"), cfg.DBURL())

	cfg = NewAppConfigWithOptions(WithDBURL("sqlite:///elsewhere.db"), WithDataDir("/data"))
	assert.Equal(t, "sqlite:///elsewhere.db", cfg.DBURL())
}

func TestPipelineConfig_IgnoresInvalidValues(t *testing.T) {
	p := NewPipelineConfig().WithBatchSize(0).WithBatchDelay(-time.Second).WithFilterParallelism(-2)

	assert.Equal(t, DefaultBatchSize, p.BatchSize())
	assert.Equal(t, DefaultBatchDelay, p.BatchDelay())
	assert.Equal(t, DefaultFilterParallelism, p.FilterParallelism())
}

func TestAppConfig_LogAttrs_MasksSecrets(t *testing.T) {
	cfg := NewAppConfigWithOptions(
		WithDBURL("postgres://user:pass@db/taxseq"),
		WithEntrez(NewEntrezConfig(WithEntrezAPIKey("very-secret"))),
		WithAPIKeys([]string{"k1", "k2"}),
	)

	attrs := map[string]slog.Value{}
	for _, a := range cfg.LogAttrs() {
		attrs[a.Key] = a.Value
	}

	assert.Equal(t, "postgres://***@***", attrs["db_url"].String())
	assert.Equal(t, "***", attrs["entrez_api_key"].String())
	assert.Equal(t, int64(2), attrs["api_keys_count"].Int64())
	for _, v := range attrs {
		assert.NotContains(t, v.String(), "very-secret")
		assert.NotContains(t, v.String(), "pass")
	}
}

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"key1", []string{"key1"}},
		{"key1,key2", []string{"key1", "key2"}},
		{" key1 , , key2 ", []string{"key1", "key2"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAPIKeys(tt.input))
		})
	}
}
