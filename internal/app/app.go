// Package app wires the relay service from already-read configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"tienda-chat/internal/integrations/openai"
	"tienda-chat/internal/integrations/paramstore"
	"tienda-chat/internal/repository"
	"tienda-chat/internal/usecase"
)

// Config holds relay settings. Entry points fill it from the environment.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	ParamPrefix string
	AuditTable  string
	AuditTTL    time.Duration
}

// ResolveProvider reads the credential once and builds the provider state.
// Any failure leaves the process unconfigured; it is logged, never fatal.
func ResolveProvider(ctx context.Context, cfg Config, getter paramstore.Getter, logger *slog.Logger) usecase.Provider {
	token, err := paramstore.ResolveToken(ctx, cfg.APIKey, getter, cfg.ParamPrefix)
	if err != nil {
		logger.Error("provider credential unavailable, relay will answer with configuration errors", "err", err)
		return usecase.UnconfiguredProvider(err)
	}

	opts := []openai.Option{openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout})}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.NewClient(token, opts...)
	if err != nil {
		logger.Error("failed to create OpenAI client", "err", err)
		return usecase.UnconfiguredProvider(err)
	}

	model := cfg.Model
	if model == "" {
		model = openai.DefaultModel
	}
	p, err := usecase.ConfiguredProvider(client, model)
	if err != nil {
		logger.Error("failed to configure provider", "err", err)
		return usecase.UnconfiguredProvider(err)
	}
	logger.Info("provider configured", "model", model)
	return p
}

// NewRelayService builds the relay service, touching AWS only when the
// parameter store fallback or the exchange audit is configured.
func NewRelayService(ctx context.Context, cfg Config, logger *slog.Logger) (*usecase.RelayService, error) {
	var (
		awsCfg aws.Config
		getter paramstore.Getter
	)
	needsAWS := (cfg.APIKey == "" && cfg.ParamPrefix != "") || cfg.AuditTable != ""
	if needsAWS {
		var err error
		awsCfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
	}
	if cfg.APIKey == "" && cfg.ParamPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, fmt.Errorf("app: create SSM client: %w", err)
		}
		getter = ssmClient
	}

	opts := []usecase.Option{usecase.WithLogger(logger)}
	if cfg.AuditTable != "" {
		audit, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.AuditTable, cfg.AuditTTL)
		if err != nil {
			return nil, fmt.Errorf("app: create audit client: %w", err)
		}
		opts = append(opts, usecase.WithRecorder(audit))
	}

	return usecase.NewRelayService(ResolveProvider(ctx, cfg, getter, logger), opts...), nil
}
