// Package gen produces dialogue scripts with an LLM so the player has
// something to read beyond hand-written files.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/murmurfm/murmur/tts"
)

const defaultChatModel = openai.GPT4oMini

const systemPrompt = `You write short spoken dialogues for a text-to-speech player.
Respond with a JSON array only, no prose and no code fences. Each element
is an object with "speaker" and "text" fields. Keep each line under two
sentences and make the speakers alternate naturally.`

// Options shapes one generation request.
type Options struct {
	// Topic is what the dialogue should be about.
	Topic string
	// Speakers are the participant labels. Empty means Mentor and Friend.
	Speakers []string
	// Lines is the requested script length. Zero means 8.
	Lines int
	// Model overrides the chat model.
	Model string
	// Language asks for the dialogue in a specific language tag.
	Language string
}

// Generator produces dialogue scripts through the OpenAI chat API.
type Generator struct {
	client *openai.Client
}

// NewGenerator creates a generator for the given API key.
func NewGenerator(apiKey string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("dialogue generation: %w", tts.ErrMissingAPIKey)
	}
	return &Generator{client: openai.NewClient(apiKey)}, nil
}

// Generate asks the model for a script and parses it into dialogue
// lines.
func (g *Generator) Generate(ctx context.Context, opts Options) ([]tts.DialogueLine, error) {
	if strings.TrimSpace(opts.Topic) == "" {
		return nil, fmt.Errorf("dialogue generation: topic is empty")
	}

	speakers := opts.Speakers
	if len(speakers) == 0 {
		speakers = []string{"Mentor", "Friend"}
	}
	lineCount := opts.Lines
	if lineCount <= 0 {
		lineCount = 8
	}
	model := opts.Model
	if model == "" {
		model = defaultChatModel
	}

	prompt := fmt.Sprintf("Write a dialogue of %d lines between %s about: %s.",
		lineCount, strings.Join(speakers, " and "), opts.Topic)
	if opts.Language != "" {
		prompt += fmt.Sprintf(" Write it in the language with tag %q.", opts.Language)
	}

	log.Debug("generating dialogue", "model", model, "lines", lineCount, "speakers", speakers)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return nil, fmt.Errorf("dialogue generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("dialogue generation: empty response")
	}

	lines, err := ParseDialogue(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// ParseDialogue extracts dialogue lines from a model response. Models
// occasionally wrap JSON in code fences despite instructions, so fences
// are stripped before decoding. Lines with empty text are dropped and
// each line gets a sequential id.
func ParseDialogue(raw string) ([]tts.DialogueLine, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed []struct {
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("dialogue generation: unparseable response: %w", err)
	}

	lines := make([]tts.DialogueLine, 0, len(parsed))
	for _, p := range parsed {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(p.Speaker)
		if speaker == "" {
			speaker = "Narrator"
		}
		lines = append(lines, tts.DialogueLine{
			ID:      fmt.Sprintf("line-%d", len(lines)+1),
			Speaker: speaker,
			Text:    text,
		})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("dialogue generation: response contained no usable lines")
	}
	return lines, nil
}
