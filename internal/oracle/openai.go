package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"

	"github.com/floegence/operator-agent/internal/loop"
	"github.com/floegence/operator-agent/internal/tools"
)

type OpenAIOptions struct {
	APIKey          string
	BaseURL         string
	Model           string
	SystemPrompt    string
	MaxOutputTokens int64
	Registry        *tools.Registry
}

// OpenAI decides via the Responses API with function tools.
type OpenAI struct {
	client    openai.Client
	model     string
	system    string
	maxTokens int64
	tools     []oresponses.ToolUnionParam
}

func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing openai api key")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("missing openai model")
	}
	clientOpts := []ooption.RequestOption{ooption.WithAPIKey(strings.TrimSpace(opts.APIKey))}
	if strings.TrimSpace(opts.BaseURL) != "" {
		clientOpts = append(clientOpts, ooption.WithBaseURL(strings.TrimSpace(opts.BaseURL)))
	}
	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}
	surfaces := buildToolSurfaces(opts.Registry)
	toolParams := make([]oresponses.ToolUnionParam, 0, len(surfaces))
	for _, surface := range surfaces {
		toolParams = append(toolParams, oresponses.ToolParamOfFunction(surface.Name, surface.Schema, false))
	}
	return &OpenAI{
		client:    openai.NewClient(clientOpts...),
		model:     strings.TrimSpace(opts.Model),
		system:    strings.TrimSpace(opts.SystemPrompt),
		maxTokens: maxTokens,
		tools:     toolParams,
	}, nil
}

func (o *OpenAI) Decide(ctx context.Context, conversation []loop.Turn) (loop.Proposal, error) {
	if o == nil {
		return loop.Proposal{}, errors.New("nil oracle")
	}
	params := oresponses.ResponseNewParams{
		Model:             oshared.ResponsesModel(o.model),
		MaxOutputTokens:   openai.Int(o.maxTokens),
		ParallelToolCalls: openai.Bool(false),
		Input:             oresponses.ResponseNewParamsInputUnion{OfInputItemList: buildOpenAIInput(conversation)},
	}
	if o.system != "" {
		params.Instructions = openai.String(o.system)
	}
	if len(o.tools) > 0 {
		params.Tools = o.tools
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return loop.Proposal{}, fmt.Errorf("openai responses: %w", err)
	}

	proposal := loop.Proposal{Text: strings.TrimSpace(resp.OutputText())}
	for _, item := range resp.Output {
		if strings.TrimSpace(item.Type) != "function_call" {
			continue
		}
		callID := strings.TrimSpace(item.CallID)
		if callID == "" {
			callID = strings.TrimSpace(item.ID)
		}
		if callID == "" {
			callID = fmt.Sprintf("openai_call_%d", len(proposal.Calls)+1)
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(item.Arguments); raw != "" {
			_ = json.Unmarshal([]byte(raw), &args)
		}
		proposal.Calls = append(proposal.Calls, loop.ProposedCall{
			ID:   callID,
			Name: strings.TrimSpace(item.Name),
			Args: args,
		})
	}
	return proposal, nil
}

func buildOpenAIInput(conversation []loop.Turn) oresponses.ResponseInputParam {
	items := make(oresponses.ResponseInputParam, 0, len(conversation)+1)
	for _, turn := range conversation {
		if turn.Role == loop.RoleAssistant {
			if txt := joinTurnText(turn); txt != "" {
				items = append(items, oresponses.ResponseInputItemParamOfMessage(txt, oresponses.EasyInputMessageRoleAssistant))
			}
			continue
		}
		content := make(oresponses.ResponseInputMessageContentListParam, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			switch part.Type {
			case "image":
				if strings.TrimSpace(part.Base64) == "" {
					continue
				}
				mimeType := strings.TrimSpace(part.MimeType)
				if mimeType == "" {
					mimeType = "image/png"
				}
				uri := "data:" + mimeType + ";base64," + part.Base64
				content = append(content, oresponses.ResponseInputContentUnionParam{
					OfInputImage: &oresponses.ResponseInputImageParam{
						Detail:   oresponses.ResponseInputImageDetailAuto,
						ImageURL: openai.String(uri),
					},
				})
			default:
				if txt := strings.TrimSpace(part.Text); txt != "" {
					content = append(content, oresponses.ResponseInputContentUnionParam{
						OfInputText: &oresponses.ResponseInputTextParam{Text: txt},
					})
				}
			}
		}
		if len(content) == 0 {
			continue
		}
		items = append(items, oresponses.ResponseInputItemParamOfMessage(content, oresponses.EasyInputMessageRoleUser))
	}
	if len(items) == 0 {
		items = append(items, oresponses.ResponseInputItemParamOfMessage("Continue.", oresponses.EasyInputMessageRoleUser))
	}
	return items
}

func joinTurnText(turn loop.Turn) string {
	parts := make([]string, 0, len(turn.Parts))
	for _, part := range turn.Parts {
		if part.Type == "image" {
			continue
		}
		if txt := strings.TrimSpace(part.Text); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n")
}
