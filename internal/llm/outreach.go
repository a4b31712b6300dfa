package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tone of a generated sales message.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneEmpathetic   Tone = "empathetic"
)

var toneStyles = map[Tone]string{
	ToneProfessional: "профессиональный деловой стиль",
	ToneCasual:       "дружелюбный неформальный стиль",
	ToneEmpathetic:   "эмпатичный понимающий стиль",
}

func (t Tone) Valid() bool {
	_, ok := toneStyles[t]
	return ok
}

// MessageBrief is what a sales message is written from.
type MessageBrief struct {
	Problem  string
	Niche    string
	Solution string
	Tone     Tone
}

// GenerateMessages writes up to three sales messages for the brief.
func (c *Client) GenerateMessages(ctx context.Context, brief MessageBrief) ([]string, error) {
	style, ok := toneStyles[brief.Tone]
	if !ok {
		style = toneStyles[ToneEmpathetic]
	}
	var b strings.Builder
	b.WriteString("Ты копирайтер, специализирующийся на создании продающих сообщений на основе реальных проблем клиентов.\n\nИСХОДНЫЕ ДАННЫЕ:\n")
	fmt.Fprintf(&b, "- Ниша: %s\n- Проблема клиентов: %s\n", brief.Niche, brief.Problem)
	if brief.Solution != "" {
		fmt.Fprintf(&b, "- Наше решение: %s\n", brief.Solution)
	}
	fmt.Fprintf(&b, "- Тон коммуникации: %s\n\n", style)
	offer := "Приглашает к диалогу о решении"
	if brief.Solution != "" {
		offer = "Предлагает конкретное решение"
	}
	fmt.Fprintf(&b, `ЗАДАЧА:
Создай 3 варианта продающего сообщения, которое:
1. Показывает понимание проблемы клиента
2. %s
3. Мотивирует к действию (написать, позвонить, узнать подробнее)
4. Написано в указанном тоне
5. Длина 2-4 предложения

ФОРМАТ ОТВЕТА (строго JSON):
{"variants":["Вариант 1...","Вариант 2...","Вариант 3..."]}

Отвечай ТОЛЬКО JSON, без markdown и пояснений.`, offer)

	var variants []string
	err := c.completeWithFallback(ctx, FallbackModels, ChatRequest{
		Messages:    []Message{{Role: "user", Content: b.String()}},
		Temperature: temperature(0.8),
		MaxTokens:   1000,
	}, func(content string) error {
		raw, ok := extractJSON(content, '{', '}')
		if !ok {
			return errors.New("no JSON object in model response")
		}
		var out struct {
			Variants []any `json:"variants"`
		}
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return err
		}
		variants = variants[:0]
		for _, v := range out.Variants {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				variants = append(variants, strings.TrimSpace(s))
			}
		}
		if len(variants) == 0 {
			return errors.New("model returned no variants")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate messages: %w", err)
	}
	return variants, nil
}

// ProjectPain is a project described by the pain it solves.
type ProjectPain struct {
	ID   string
	Name string
	Pain string
}

// ProjectMatch scores how close a project's pain is to a given one.
type ProjectMatch struct {
	ProjectID  string
	Similarity float64
}

// MinSimilarity is the lowest similarity the model is asked to return.
const MinSimilarity = 0.5

// MatchProjects scores projects against painText. Matches below
// MinSimilarity and indexes outside projects are dropped.
func (c *Client) MatchProjects(ctx context.Context, painText string, projects []ProjectPain) ([]ProjectMatch, error) {
	if len(projects) == 0 {
		return nil, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Сравни боль из социальных сетей с болями в проектах.\n\nБоль из соцсетей: %q\n\nПроекты:\n", painText)
	for i, p := range projects {
		fmt.Fprintf(&b, "%d. %s: %q\n", i+1, p.Name, p.Pain)
	}
	fmt.Fprintf(&b, `
Для каждого проекта определи семантическое сходство (0.0 - 1.0).
Верни ТОЛЬКО те, где similarity >= %.1f.

Формат JSON (без дополнительного текста):
{"matches":[{"projectIndex":0,"similarity":0.85}]}`, MinSimilarity)

	content, err := c.Complete(ctx, ChatRequest{
		Messages:  []Message{{Role: "user", Content: b.String()}},
		MaxTokens: 1000,
	})
	if err != nil {
		return nil, err
	}
	return parseMatches(content, projects)
}

func parseMatches(content string, projects []ProjectPain) ([]ProjectMatch, error) {
	raw, ok := extractJSON(content, '{', '}')
	if !ok {
		return nil, errors.New("no JSON object in model response")
	}
	var res struct {
		Matches []struct {
			ProjectIndex *int    `json:"projectIndex"`
			Similarity   float64 `json:"similarity"`
		} `json:"matches"`
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("invalid model response format: %w", err)
	}
	out := []ProjectMatch{}
	seen := make(map[int]bool, len(res.Matches))
	for _, m := range res.Matches {
		if m.ProjectIndex == nil || *m.ProjectIndex < 0 || *m.ProjectIndex >= len(projects) || seen[*m.ProjectIndex] {
			continue
		}
		if m.Similarity < MinSimilarity {
			continue
		}
		seen[*m.ProjectIndex] = true
		out = append(out, ProjectMatch{
			ProjectID:  projects[*m.ProjectIndex].ID,
			Similarity: clamp(m.Similarity, 0, 1),
		})
	}
	return out, nil
}
