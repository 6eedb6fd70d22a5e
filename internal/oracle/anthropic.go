package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/floegence/operator-agent/internal/loop"
	"github.com/floegence/operator-agent/internal/tools"
)

type AnthropicOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	// SystemPrompt is the static process-wide instruction text, supplied at
	// construction and immutable afterwards.
	SystemPrompt    string
	MaxOutputTokens int64
	Registry        *tools.Registry
}

// Anthropic decides via the Messages API with tool-use blocks.
type Anthropic struct {
	client    anthropic.Client
	model     string
	system    string
	maxTokens int64
	tools     []anthropic.ToolUnionParam
}

func NewAnthropic(opts AnthropicOptions) (*Anthropic, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing anthropic api key")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("missing anthropic model")
	}
	clientOpts := []aoption.RequestOption{aoption.WithAPIKey(strings.TrimSpace(opts.APIKey))}
	if strings.TrimSpace(opts.BaseURL) != "" {
		clientOpts = append(clientOpts, aoption.WithBaseURL(strings.TrimSpace(opts.BaseURL)))
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}
	return &Anthropic{
		client:    anthropic.NewClient(clientOpts...),
		model:     strings.TrimSpace(opts.Model),
		system:    strings.TrimSpace(opts.SystemPrompt),
		maxTokens: maxTokens,
		tools:     buildAnthropicTools(buildToolSurfaces(opts.Registry)),
	}, nil
}

func (o *Anthropic) Decide(ctx context.Context, conversation []loop.Turn) (loop.Proposal, error) {
	if o == nil {
		return loop.Proposal{}, errors.New("nil oracle")
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: o.maxTokens,
		Messages:  buildAnthropicMessages(conversation),
		Tools:     o.tools,
	}
	if o.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: o.system}}
	}

	msg, err := o.client.Messages.New(ctx, params)
	if err != nil {
		return loop.Proposal{}, fmt.Errorf("anthropic messages: %w", err)
	}

	proposal := loop.Proposal{}
	var textBuf strings.Builder
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textBuf.WriteString(variant.Text)
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(variant.Input) > 0 {
				_ = json.Unmarshal(variant.Input, &args)
			}
			callID := strings.TrimSpace(variant.ID)
			if callID == "" {
				callID = fmt.Sprintf("anthropic_call_%d", len(proposal.Calls)+1)
			}
			proposal.Calls = append(proposal.Calls, loop.ProposedCall{
				ID:   callID,
				Name: strings.TrimSpace(variant.Name),
				Args: args,
			})
		}
	}
	proposal.Text = strings.TrimSpace(textBuf.String())
	return proposal, nil
}

func buildAnthropicTools(surfaces []toolSurface) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(surfaces))
	for _, surface := range surfaces {
		param := anthropic.ToolParam{
			Name:        surface.Name,
			Description: anthropic.String(surface.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:       "object",
				Properties: surface.Properties,
				Required:   surface.Required,
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &param})
	}
	return out
}

func buildAnthropicMessages(conversation []loop.Turn) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(conversation)+1)
	for _, turn := range conversation {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			switch part.Type {
			case "image":
				if strings.TrimSpace(part.Base64) == "" {
					continue
				}
				mediaType := strings.TrimSpace(part.MimeType)
				if mediaType == "" {
					mediaType = "image/png"
				}
				blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, part.Base64))
			default:
				if txt := strings.TrimSpace(part.Text); txt != "" {
					blocks = append(blocks, anthropic.NewTextBlock(txt))
				}
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if turn.Role == loop.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			// Tool-result turns render as user content: the loop does not
			// replay assistant tool_use blocks, so paired tool_result blocks
			// are not available here.
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	if len(out) == 0 {
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock("Continue.")))
	}
	return out
}
