package main

import (
	"context"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
)

type Config struct {
	servicePort  string
	metadataPath string
	remoteURL    string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		servicePort:  env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080"),
		metadataPath: env.GetVariableOrDefault(ctx, "CGR_METADATA_PATH", "/opt/diwise/config/cgr-metadata.yaml"),
		remoteURL:    env.GetVariableOrDefault(ctx, "CGR_REMOTE_URL", ""),
	}
}
