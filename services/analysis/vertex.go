package analysis

import (
	"context"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/interfaces"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/tracing"
)

// VertexAnalyzer asks a Gemini model on Vertex AI to analyse résumé text
type VertexAnalyzer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	cfg    *config.AnalysisConfig
	log    logger.Logger
}

func NewVertexAnalyzer(ctx context.Context, cfg *config.AnalysisConfig, log logger.Logger) (*VertexAnalyzer, error) {
	if cfg.GoogleCloudProject == "" {
		return nil, errors.New("GOOGLE_CLOUD_PROJECT is required for the vertex analysis provider")
	}

	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudRegion, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Vertex AI client")
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	model.ResponseMIMEType = "application/json"

	return &VertexAnalyzer{client: client, model: model, cfg: cfg, log: log}, nil
}

func (v *VertexAnalyzer) Analyze(ctx context.Context, text string) (*interfaces.ResumeAnalysis, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "VertexAnalyzer.Analyze")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("model", v.cfg.Model)
	span.SetTag("text.length", len(text))

	if v.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}

	resp, err := v.model.GenerateContent(ctx, genai.Text(BuildPrompt(text)))
	if err != nil {
		err = internalerrors.NewAnalysisError("failed to generate content", err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		err = internalerrors.NewAnalysisError("no response candidates returned", nil)
		tracing.TraceErr(span, err)
		return nil, err
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			reply.WriteString(string(text))
		}
	}

	analysis, err := ParseAnalysis(reply.String())
	if err != nil {
		tracing.TraceErr(span, err)
		v.log.Warnf("Unusable analysis reply from %s: %v", v.cfg.Model, err)
		return nil, err
	}
	span.SetTag("relevance_score", analysis.RelevanceScore)
	return analysis, nil
}

func (v *VertexAnalyzer) Close() error {
	return v.client.Close()
}
