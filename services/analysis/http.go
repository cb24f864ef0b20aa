package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/interfaces"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

const apiKeyHeader = "X-RECRUITSTACK-API-KEY"

// maxResponseBytes caps how much of an endpoint reply is read
const maxResponseBytes = 1 << 20

type analysisRequest struct {
	Prompt string `json:"prompt"`
}

// HTTPAnalyzer sends the analysis prompt to a JSON endpoint that answers with the model reply
type HTTPAnalyzer struct {
	cfg    *config.AnalysisConfig
	client *http.Client
}

func NewHTTPAnalyzer(cfg *config.AnalysisConfig) (*HTTPAnalyzer, error) {
	if cfg.HTTPEndpoint == "" {
		return nil, errors.New("ANALYSIS_HTTP_ENDPOINT is required for the http analysis provider")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPAnalyzer{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, text string) (*interfaces.ResumeAnalysis, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HTTPAnalyzer.Analyze")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("text.length", len(text))

	payload, err := json.Marshal(analysisRequest{Prompt: BuildPrompt(text)})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, internalerrors.NewAnalysisError("failed to marshal payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.HTTPEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, internalerrors.NewAnalysisError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.HTTPAPIKey != "" {
		req.Header.Set(apiKeyHeader, a.cfg.HTTPAPIKey)
	}
	req = tracing.InjectSpanContextIntoHTTPRequest(req, span)

	resp, err := a.client.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, internalerrors.NewAnalysisError("request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, internalerrors.NewAnalysisError("unable to read response body", err)
	}
	if len(body) > maxResponseBytes {
		err = internalerrors.NewAnalysisError(fmt.Sprintf("response body exceeds %d bytes", maxResponseBytes), nil)
		tracing.TraceErr(span, err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = internalerrors.NewAnalysisError(fmt.Sprintf("request failed with status code %d: %s", resp.StatusCode, string(body)), nil)
		tracing.TraceErr(span, err)
		return nil, err
	}

	analysis, err := ParseAnalysis(string(body))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.LogObjectAsJson(span, "analysis", analysis)
	return analysis, nil
}
