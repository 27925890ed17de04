package common

import (
	"context"

	"hemolink/src/utils/config"
)

type contextKey int

const configKey contextKey = iota

func SetConfig(ctx context.Context, conf *config.Config) context.Context {
	return context.WithValue(ctx, configKey, conf)
}

func GetConfig(ctx context.Context) *config.Config {
	conf, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return conf
}
