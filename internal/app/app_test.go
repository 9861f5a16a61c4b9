package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/config"
)

func fileConfig(dir string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendFile, Dir: dir},
		Metrics: config.MetricsConfig{WarnThreshold: 0.9},
	}
}

func TestOpen_FileBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a, err := Open(ctx, fileConfig(dir))
	require.NoError(t, err)
	assert.Len(t, a.Store.Transactions(), 5)
	assert.Equal(t, 0.9, a.Engine.WarnThreshold)

	a.Store.Reset(ctx)
	require.NoError(t, a.Close())

	reopened, err := Open(ctx, fileConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()
	assert.Empty(t, reopened.Store.Transactions())
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, closeFn, err := OpenBackend(context.Background(), config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestParseBackendURI(t *testing.T) {
	tests := []struct {
		uri     string
		want    config.StorageConfig
		wantErr bool
	}{
		{uri: "gs://vaulty-data/prod", want: config.StorageConfig{Backend: config.BackendGCS, Bucket: "vaulty-data", Prefix: "prod"}},
		{uri: "bq://my-project/vaulty", want: config.StorageConfig{Backend: config.BackendBigQuery, Project: "my-project", Dataset: "vaulty"}},
		{uri: "file://.vaulty", want: config.StorageConfig{Backend: config.BackendFile, Dir: ".vaulty"}},
		{uri: "/var/lib/vaulty", want: config.StorageConfig{Backend: config.BackendFile, Dir: "/var/lib/vaulty"}},
		{uri: "gs://", wantErr: true},
		{uri: "bq://only-project", wantErr: true},
		{uri: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseBackendURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
