package app

import (
	"fmt"
	"strings"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/config"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/infra/gcs"
)

// ParseBackendURI maps a backend location to storage settings:
//
//	gs://bucket/prefix     Cloud Storage
//	bq://project/dataset   BigQuery
//	file://dir or dir      local directory
func ParseBackendURI(uri string) (config.StorageConfig, error) {
	switch {
	case strings.HasPrefix(uri, "gs://"):
		bucket, prefix, err := gcs.ParseURI(uri)
		if err != nil {
			return config.StorageConfig{}, err
		}
		return config.StorageConfig{Backend: config.BackendGCS, Bucket: bucket, Prefix: prefix}, nil

	case strings.HasPrefix(uri, "bq://"):
		parts := strings.SplitN(strings.TrimPrefix(uri, "bq://"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return config.StorageConfig{}, fmt.Errorf("invalid BigQuery URI (want bq://project/dataset): %s", uri)
		}
		return config.StorageConfig{Backend: config.BackendBigQuery, Project: parts[0], Dataset: parts[1]}, nil
	}

	dir := strings.TrimPrefix(uri, "file://")
	if dir == "" {
		return config.StorageConfig{}, fmt.Errorf("empty backend URI")
	}
	return config.StorageConfig{Backend: config.BackendFile, Dir: dir}, nil
}
