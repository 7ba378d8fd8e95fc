package ai

import (
	"context"
	"time"

	"github.com/benvon/plume/internal/logger"
	"github.com/benvon/plume/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/benvon/plume/internal/services/ai"

// tracedAdapter wraps an Adapter with a span and debug logs per call
type tracedAdapter struct {
	next      Adapter
	tracer    trace.Tracer
	logger    *zap.Logger
	debugMode bool
}

// WithTracing decorates adapter with OpenTelemetry spans and, in debug mode,
// sanitized request/response logs.
func WithTracing(adapter Adapter, log *zap.Logger, debugMode bool) Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &tracedAdapter{
		next:      adapter,
		tracer:    otel.Tracer(tracerName),
		logger:    log,
		debugMode: debugMode,
	}
}

func (t *tracedAdapter) Provider() models.Provider {
	return t.next.Provider()
}

func (t *tracedAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, settings models.ProviderSettings) (string, error) {
	provider := t.next.Provider()
	ctx, span := t.tracer.Start(ctx, "ai.generate", trace.WithAttributes(
		attribute.String("ai.provider", string(provider)),
		attribute.String("ai.model", settings.Model),
		attribute.Int("ai.prompt_length", len(systemPrompt)+len(userPrompt)),
	))
	defer span.End()

	log := logger.WithContext(ctx, t.logger)
	if t.debugMode {
		log.Debug("llm_api_request",
			zap.String("provider", string(provider)),
			zap.String("model", settings.Model),
			zap.String("api_key", SanitizeAPIKey(settings.APIKey)),
			zap.Int("prompt_length", len(userPrompt)),
			zap.String("system_prompt_preview", SanitizePrompt(systemPrompt, true)),
			zap.String("prompt_preview", SanitizePrompt(userPrompt, true)),
		)
	}

	start := time.Now()
	text, err := t.next.Generate(ctx, systemPrompt, userPrompt, settings)
	latency := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		if t.debugMode {
			log.Debug("llm_api_error",
				zap.String("provider", string(provider)),
				zap.String("model", settings.Model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return "", err
	}

	span.SetAttributes(attribute.Int("ai.response_length", len(text)))
	if t.debugMode {
		log.Debug("llm_api_response",
			zap.String("provider", string(provider)),
			zap.String("model", settings.Model),
			zap.Int("response_length", len(text)),
			zap.String("response_preview", SanitizeResponse(text, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return text, nil
}

func (t *tracedAdapter) ListModels(ctx context.Context, settings models.ProviderSettings) ([]models.ModelInfo, error) {
	ctx, span := t.tracer.Start(ctx, "ai.list_models", trace.WithAttributes(
		attribute.String("ai.provider", string(t.next.Provider())),
	))
	defer span.End()

	list, err := t.next.ListModels(ctx, settings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list models failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("ai.model_count", len(list)))
	return list, nil
}

func (t *tracedAdapter) CheckStatus(ctx context.Context, settings models.ProviderSettings) models.ProviderStatus {
	ctx, span := t.tracer.Start(ctx, "ai.check_status", trace.WithAttributes(
		attribute.String("ai.provider", string(t.next.Provider())),
	))
	defer span.End()

	status := t.next.CheckStatus(ctx, settings)
	span.SetAttributes(attribute.String("ai.status", string(status.State)))
	return status
}
