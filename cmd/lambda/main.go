// Package main is the AWS Lambda entry point. It runs the same analysis
// pipeline as `sahaj serve`, one request per invocation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sahaj-english/sahaj/analysis"
	"github.com/sahaj-english/sahaj/config"
	"github.com/sahaj-english/sahaj/parse"
	"github.com/sahaj-english/sahaj/provider"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}

	svc, err := cfg.NewService(&logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building service")
	}

	h := &handler{svc: svc, apiKey: cfg.APIKey, provider: provider.ID(cfg.Provider), logger: &logger}
	lambda.Start(h.handle)
}

// Request is the invocation payload, the same shape as /api/analyze.
type Request struct {
	Passage  string      `json:"passage"`
	Provider provider.ID `json:"provider"`
	APIKey   string      `json:"apiKey"`
	Mode     string      `json:"mode"`
}

// Response carries either a result or an error. Failures are reported in
// the body so the caller always gets a decodable answer.
type Response struct {
	RequestID string                 `json:"requestId"`
	Provider  provider.ID            `json:"provider,omitempty"`
	Mode      provider.Mode          `json:"mode,omitempty"`
	Analysis  parse.Analysis         `json:"analysis,omitempty"`
	Stable    *analysis.StableResult `json:"stable,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

type handler struct {
	svc *analysis.Service
	// apiKey and provider are the environment defaults.
	apiKey   string
	provider provider.ID
	logger   *zerolog.Logger
}

func (h *handler) handle(ctx context.Context, event json.RawMessage) (*Response, error) {
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup), nil
	}

	id := uuid.NewString()
	log := h.logger.With().Str("request_id", id).Logger()

	var in Request
	if err := json.Unmarshal(event, &in); err != nil {
		return &Response{RequestID: id, Error: fmt.Sprintf("invalid request: %v", err)}, nil
	}

	req := analysis.Request{Text: in.Passage, Provider: in.Provider, Credential: in.APIKey}
	if req.Provider == "" {
		req.Provider = h.provider
	}
	if req.Credential == "" {
		req.Credential = h.apiKey
	}
	if in.Mode != "" {
		m, err := provider.ParseMode(in.Mode)
		if err != nil {
			return &Response{RequestID: id, Error: err.Error()}, nil
		}
		req.Mode = m
	}

	out, err := h.svc.Run(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("provider", string(req.Provider)).Msg("analysis failed")
		return &Response{RequestID: id, Provider: req.Provider, Error: err.Error()}, nil
	}
	log.Info().Str("provider", string(out.Provider)).Str("mode", string(out.Mode)).Msg("analysis done")
	return &Response{
		RequestID: id,
		Provider:  out.Provider,
		Mode:      out.Mode,
		Analysis:  out.Analysis,
		Stable:    out.Stable,
	}, nil
}
