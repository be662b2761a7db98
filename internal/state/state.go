// Package state defines the process-scoped values a conversion call
// threads through context.Context, mirroring fbc/state's LocalEnv pattern
// (§5 Concurrency & Resource Model: no globals, everything scoped to the
// call).
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"docxpdf/internal/config"
)

type envKey struct{}

// LocalEnv carries everything a single conversion needs.
type LocalEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	start time.Time
}

// NewEnv builds a LocalEnv from a resolved configuration and logger.
func NewEnv(cfg *config.Config, log *zap.Logger) *LocalEnv {
	return &LocalEnv{Cfg: cfg, Log: log, start: time.Now()}
}

// ContextWithEnv attaches env to ctx.
func ContextWithEnv(ctx context.Context, env *LocalEnv) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// EnvFromContext retrieves the LocalEnv previously attached with
// ContextWithEnv. It panics if none is present — every entry point into
// this module must call ContextWithEnv first.
func EnvFromContext(ctx context.Context) *LocalEnv {
	env, ok := ctx.Value(envKey{}).(*LocalEnv)
	if !ok {
		panic("docxpdf: localenv not found in context")
	}
	return env
}

// Uptime reports how long this conversion has been running.
func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}
