package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/taskmanager/taskmanager-api/internal/models"
)

// TaskSuggester drafts tasks for a project from free-form text.
type TaskSuggester interface {
	SuggestTasks(ctx context.Context, projectName, text string) ([]SuggestedTask, error)
}

// SuggestedTask is a draft task. It is never persisted by the suggester.
type SuggestedTask struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Priority     models.TaskPriority `json:"priority"`
	DeliveryDate *time.Time          `json:"delivery_date"`
}

type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// SuggestTasks asks the chat model to break text down into project tasks
func (s *AIService) SuggestTasks(ctx context.Context, projectName, text string) ([]SuggestedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format(time.RFC3339)
	prompt := fmt.Sprintf(`You are an assistant that plans work for the project %q.
Extract concrete tasks from the text below.

Current time: %s

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "name": "short task name",
    "description": "what needs to be done",
    "priority": "Low, Medium or High",
    "delivery_date": "deadline in RFC3339 (e.g. 2025-10-28T23:59:59Z) or null"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") to absolute dates
- Return JSON only, without any explanation`, projectName, currentTime, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestions(resp.Choices[0].Message.Content)
}

func parseSuggestions(content string) ([]SuggestedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var tasks []SuggestedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
