package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockBackend drives AWS Bedrock's InvokeModel API directly, bypassing a
// proxy, for Claude (Anthropic), Titan (Amazon), and Llama (Meta) model
// families on Bedrock.
type BedrockBackend struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float64
	topP        float64
}

// NewBedrockBackend constructs a backend for the given Bedrock model ID and
// AWS region, using the default AWS credential chain.
func NewBedrockBackend(ctx context.Context, modelID, region string, maxTokens int, temperature, topP float64) (*BedrockBackend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("bedrock backend: failed to load AWS config: %w", err)
	}
	return &BedrockBackend{
		client:      bedrockruntime.NewFromConfig(awsCfg),
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
	}, nil
}

func (b *BedrockBackend) Name() string { return "bedrock" }

func (b *BedrockBackend) Complete(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var body []byte
	var err error

	switch {
	case strings.HasPrefix(b.modelID, "anthropic.claude"):
		body, err = b.buildClaudeRequest(req)
	case strings.HasPrefix(b.modelID, "amazon.titan"):
		body, err = b.buildTitanRequest(req)
	case strings.HasPrefix(b.modelID, "meta.llama"):
		body, err = b.buildLlamaRequest(req)
	default:
		return ChatResponse{}, &GatewayError{StatusCode: 400, Body: fmt.Sprintf("unsupported bedrock model family: %s", b.modelID)}
	}
	if err != nil {
		return ChatResponse{}, &GatewayError{StatusCode: 400, Body: err.Error()}
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return ChatResponse{}, wrapBedrockError(err)
	}

	var text string
	switch {
	case strings.HasPrefix(b.modelID, "anthropic.claude"):
		text, err = parseClaudeResponse(out.Body)
	case strings.HasPrefix(b.modelID, "amazon.titan"):
		text, err = parseTitanResponse(out.Body)
	case strings.HasPrefix(b.modelID, "meta.llama"):
		text, err = parseLlamaResponse(out.Body)
	}
	if err != nil {
		return ChatResponse{}, &GatewayError{StatusCode: 0, Body: err.Error()}
	}
	return ChatResponse{Content: text}, nil
}

func (b *BedrockBackend) buildClaudeRequest(req ChatRequest) ([]byte, error) {
	system, hasSystem, turns := splitSystemAndTurns(req.Messages)

	messages := make([]map[string]string, 0, len(turns))
	for _, m := range turns {
		role := string(m.Role)
		if m.Role == RoleUser || m.Role == RoleAssistant {
			messages = append(messages, map[string]string{"role": role, "content": m.Content})
		}
	}

	maxTokens := b.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	body := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        maxTokens,
		"messages":          messages,
		"temperature":       b.temperature,
	}
	if hasSystem {
		body["system"] = system
	}
	if b.topP > 0 {
		body["top_p"] = b.topP
	}
	return json.Marshal(body)
}

func parseClaudeResponse(raw []byte) (string, error) {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), nil
}

func (b *BedrockBackend) buildTitanRequest(req ChatRequest) ([]byte, error) {
	system, hasSystem, turns := splitSystemAndTurns(req.Messages)

	var prompt strings.Builder
	if hasSystem {
		prompt.WriteString(system)
		prompt.WriteString("\n\n")
	}
	for _, m := range turns {
		switch m.Role {
		case RoleUser:
			prompt.WriteString("User: " + m.Content + "\n")
		case RoleAssistant:
			prompt.WriteString("Assistant: " + m.Content + "\n")
		}
	}
	prompt.WriteString("Assistant:")

	maxTokens := b.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	genConfig := map[string]any{
		"maxTokenCount": maxTokens,
		"temperature":   b.temperature,
	}
	if b.topP > 0 {
		genConfig["topP"] = b.topP
	}
	body := map[string]any{
		"inputText":            prompt.String(),
		"textGenerationConfig": genConfig,
	}
	return json.Marshal(body)
}

func parseTitanResponse(raw []byte) (string, error) {
	var resp struct {
		Results []struct {
			OutputText string `json:"outputText"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", fmt.Errorf("no results in Titan response")
	}
	return resp.Results[0].OutputText, nil
}

func (b *BedrockBackend) buildLlamaRequest(req ChatRequest) ([]byte, error) {
	system, hasSystem, turns := splitSystemAndTurns(req.Messages)

	var prompt strings.Builder
	if hasSystem {
		fmt.Fprintf(&prompt, "<s>[INST] <<SYS>>\n%s\n<</SYS>>\n\n", system)
	} else {
		prompt.WriteString("<s>[INST] ")
	}
	for i, m := range turns {
		switch m.Role {
		case RoleUser:
			if i > 0 {
				prompt.WriteString("<s>[INST] ")
			}
			prompt.WriteString(m.Content)
		case RoleAssistant:
			fmt.Fprintf(&prompt, " [/INST] %s </s>", m.Content)
		}
	}
	prompt.WriteString(" [/INST]")

	maxTokens := b.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	body := map[string]any{
		"prompt":      prompt.String(),
		"max_gen_len": maxTokens,
		"temperature": b.temperature,
	}
	if b.topP > 0 {
		body["top_p"] = b.topP
	}
	return json.Marshal(body)
}

func parseLlamaResponse(raw []byte) (string, error) {
	var resp struct {
		Generation string `json:"generation"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	return resp.Generation, nil
}

// wrapBedrockError maps AWS Bedrock exception names (string-matched, as
// aws-sdk-go-v2 does not expose a single typed status code) onto the
// gateway's HTTP-status-shaped taxonomy so the shared retry logic applies
// uniformly across backends.
func wrapBedrockError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ThrottlingException"), strings.Contains(msg, "TooManyRequestsException"):
		return &GatewayError{StatusCode: 429, Body: msg}
	case strings.Contains(msg, "AccessDeniedException"), strings.Contains(msg, "UnauthorizedException"):
		return &GatewayError{StatusCode: 401, Body: msg}
	case strings.Contains(msg, "ValidationException"):
		return &GatewayError{StatusCode: 400, Body: msg}
	case strings.Contains(msg, "ServiceUnavailableException"), strings.Contains(msg, "InternalServerException"):
		return &GatewayError{StatusCode: 503, Body: msg}
	default:
		return &GatewayError{StatusCode: 0, Body: msg}
	}
}
