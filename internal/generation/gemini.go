package generation

import (
	"bytes"
	"context"
	"embed"
	stderrors "errors"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/llmadventure/llmadventure/internal/errors"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// GeminiConfig holds the settings for the Gemini-backed client
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Validate ensures required settings are provided
func (c *GeminiConfig) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.APIKey == "" {
		vb.RequiredField("APIKey")
	}
	if c.Model == "" {
		vb.RequiredField("Model")
	}

	return vb.Build()
}

// GeminiClient implements Client against the Gemini API
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	prompts *template.Template
}

// Ensure GeminiClient implements Client
var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed generation client
func NewGeminiClient(ctx context.Context, cfg *GeminiConfig) (*GeminiClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	prompts, err := template.ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse prompt templates")
	}

	return &GeminiClient{
		client:  client,
		model:   client.GenerativeModel(cfg.Model),
		prompts: prompts,
	}, nil
}

// Close releases the underlying API client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Generate renders the prompt template for the request kind and sends it
func (c *GeminiClient) Generate(ctx context.Context, req *Request) (string, error) {
	if !req.Kind.Valid() {
		return "", errors.InvalidArgumentf("unknown request kind: %s", req.Kind)
	}

	var buf bytes.Buffer
	if err := c.prompts.ExecuteTemplate(&buf, string(req.Kind)+".tmpl", req.Context); err != nil {
		return "", errors.Wrapf(err, "failed to render %s prompt", req.Kind)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.Unavailable("empty response from generation service")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.SchemaViolation("non-text response from generation service")
	}

	return stripFences(string(text)), nil
}

// stripFences removes markdown code fences the model wraps YAML in
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```yaml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// classify maps API failures onto the error taxonomy. Rate limits, server
// errors, and deadline expiry are transient; everything else is permanent.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "generation request timed out")
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code >= 500 {
			return errors.WrapWithCode(err, errors.CodeUnavailable, "generation service unavailable")
		}
		return errors.WrapWithCode(err, errors.CodeInternal, "generation request rejected")
	}

	// Network-level failures surface as plain errors; treat them as transient
	return errors.WrapWithCode(err, errors.CodeUnavailable, "generation request failed")
}
