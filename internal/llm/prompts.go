package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

// FallbackModels are tried in order for keyword generation and niche analysis.
var FallbackModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"anthropic/claude-3.5-haiku",
	"openai/gpt-4o-mini",
}

func temperature(v float64) *float64 { return &v }

// PostInput is a post handed to the extraction prompt.
type PostInput struct {
	ID      string
	Author  string
	Content string
}

// Pain is one pain the model found in a post, already normalised.
type Pain struct {
	PainText   string
	Category   dom.PainCategory
	Severity   dom.PainSeverity
	Sentiment  float64
	Confidence float64
	Keywords   []string
	Context    string
}

// PostPains are the pains found in one post.
type PostPains struct {
	PostID string
	Pains  []Pain
}

type rawPain struct {
	PainText   string   `json:"painText"`
	Category   string   `json:"category"`
	Severity   string   `json:"severity"`
	Sentiment  *float64 `json:"sentiment"`
	Confidence *float64 `json:"confidence"`
	Keywords   []string `json:"keywords"`
	Context    string   `json:"context"`
}

type rawExtraction struct {
	Posts []struct {
		PostIndex *int      `json:"postIndex"`
		Pains     []rawPain `json:"pains"`
	} `json:"posts"`
}

// ExtractPains asks the model for business pains in up to ten posts.
func (c *Client) ExtractPains(ctx context.Context, posts []PostInput, searchContext string) ([]PostPains, error) {
	if len(posts) == 0 {
		return nil, nil
	}
	content, err := c.Complete(ctx, ChatRequest{
		Messages:  []Message{{Role: "user", Content: extractionPrompt(posts, searchContext)}},
		MaxTokens: 2000,
	})
	if err != nil {
		return nil, err
	}
	return parseExtraction(content, posts)
}

func extractionPrompt(posts []PostInput, searchContext string) string {
	var b strings.Builder
	b.WriteString("Ты - эксперт по анализу болей бизнеса и потребностей клиентов.\n\n")
	b.WriteString("Проанализируй следующие посты из социальных сетей и извлеки из них боли, проблемы и потребности.\n\nПосты:\n")
	for i, p := range posts {
		fmt.Fprintf(&b, "\n%d. Автор: %s\nТекст: %q\n", i+1, p.Author, p.Content)
	}
	if searchContext != "" {
		fmt.Fprintf(&b, "\nКонтекст поиска: %s\n", searchContext)
	}
	b.WriteString(`
Для КАЖДОГО поста определи:
1. Какие боли/проблемы/потребности упоминает автор (может быть несколько или ноль)
2. Категорию боли: TIME_MANAGEMENT, COST, TECHNICAL, PROCESS, COMMUNICATION, QUALITY, SCALABILITY, SECURITY, OTHER
3. Серьезность: LOW, MEDIUM, HIGH, CRITICAL
4. Sentiment (число от -1.0 до 1.0, где -1 = очень негативный, 0 = нейтральный, 1 = позитивный)
5. Уверенность в анализе (0.0 до 1.0)
6. Ключевые слова из боли (2-5 слов)
7. Краткий контекст (1 предложение)

Верни результат ТОЛЬКО в формате JSON (без дополнительного текста):
{"posts":[{"postIndex":0,"pains":[{"painText":"краткое описание боли","category":"TECHNICAL","severity":"HIGH","sentiment":-0.7,"confidence":0.9,"keywords":["bug","crash"],"context":"User experiencing app crashes"}]}]}

Если в посте нет болей, верни пустой массив pains.
Будь точным и конкретным.`)
	return b.String()
}

func parseExtraction(content string, posts []PostInput) ([]PostPains, error) {
	raw, ok := extractJSON(content, '{', '}')
	if !ok {
		return nil, errors.New("no JSON object in model response")
	}
	var res rawExtraction
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("invalid model response format: %w", err)
	}
	if res.Posts == nil {
		return nil, errors.New("invalid model response structure")
	}

	out := make([]PostPains, 0, len(res.Posts))
	for i, p := range res.Posts {
		idx := i
		if p.PostIndex != nil && *p.PostIndex >= 0 && *p.PostIndex < len(posts) {
			idx = *p.PostIndex
		}
		if idx >= len(posts) {
			continue
		}
		pp := PostPains{PostID: posts[idx].ID}
		for _, rp := range p.Pains {
			if strings.TrimSpace(rp.PainText) == "" {
				continue
			}
			pp.Pains = append(pp.Pains, normalizePain(rp))
		}
		out = append(out, pp)
	}
	return out, nil
}

func normalizePain(rp rawPain) Pain {
	p := Pain{
		PainText:   strings.TrimSpace(rp.PainText),
		Category:   dom.PainCategory(strings.ToUpper(rp.Category)),
		Severity:   dom.PainSeverity(strings.ToUpper(rp.Severity)),
		Confidence: 0.8,
		Keywords:   rp.Keywords,
		Context:    rp.Context,
	}
	if !p.Category.Valid() {
		p.Category = dom.PainOther
	}
	if !p.Severity.Valid() {
		p.Severity = dom.SeverityMedium
	}
	if rp.Sentiment != nil {
		p.Sentiment = clamp(*rp.Sentiment, -1, 1)
	}
	if rp.Confidence != nil {
		p.Confidence = clamp(*rp.Confidence, 0, 1)
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HasCyrillic reports whether s contains Cyrillic letters.
func HasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// TranslateToEnglish translates Cyrillic text for English-only sources.
// Text without Cyrillic and any failure return the input unchanged.
func (c *Client) TranslateToEnglish(ctx context.Context, text string) string {
	if !HasCyrillic(text) || !c.Configured() {
		return text
	}
	prompt := fmt.Sprintf("Переведи следующий текст на английский язык. Верни только перевод, без объяснений:\n\n%q\n\nПеревод:", text)
	out, err := c.Complete(ctx, ChatRequest{
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: 200,
	})
	if err != nil {
		return text
	}
	out = strings.Trim(strings.TrimSpace(out), `"'`)
	if out == "" {
		return text
	}
	return out
}

// GenerateKeywords asks for 10-15 Russian search phrases about pains in a niche.
func (c *Client) GenerateKeywords(ctx context.Context, niche string) ([]string, error) {
	prompt := fmt.Sprintf(`Ты эксперт по анализу болей и проблем в бизнесе.

Ниша/Сфера бизнеса: %q

Твоя задача: сгенерировать список из 10-15 ключевых слов и фраз на русском языке, по которым нужно искать упоминания проблем, болей и сложностей в этой нише.

Ключевые слова должны быть:
- Связаны с проблемами, сложностями, болями в этой нише
- На русском языке
- Разнообразными (общие проблемы, специфичные термины, жаргон)
- Фокусированы на поиске негатива и проблем

Верни ТОЛЬКО массив ключевых слов в формате JSON, без дополнительного текста:
["ключевое слово 1", "ключевое слово 2", ...]`, niche)

	var keywords []string
	err := c.completeWithFallback(ctx, FallbackModels, ChatRequest{
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: temperature(0.7),
		MaxTokens:   1000,
	}, func(content string) error {
		raw, ok := extractJSON(content, '[', ']')
		if !ok {
			return errors.New("no JSON array in model response")
		}
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return err
		}
		keywords = keywords[:0]
		for _, k := range list {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return errors.New("model returned no keywords")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate keywords: %w", err)
	}
	return keywords, nil
}

// NichePost is a scored post summarised for niche analysis.
type NichePost struct {
	Platform string
	Title    string
	Likes    int
	Comments int
}

type NicheCategory struct {
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// NicheAnalysis is the model's summary of the posts found for a niche.
type NicheAnalysis struct {
	Summary         string          `json:"summary"`
	Categories      []NicheCategory `json:"categories"`
	TopInsights     []string        `json:"topInsights"`
	Recommendations []string        `json:"recommendations"`
}

// FailedNicheAnalysis is returned when every model failed.
func FailedNicheAnalysis() NicheAnalysis {
	return NicheAnalysis{
		Summary:         "Анализ не удался",
		Categories:      []NicheCategory{},
		TopInsights:     []string{},
		Recommendations: []string{},
	}
}

// AnalyzeNiche summarises up to 30 posts. Model failures degrade to
// FailedNicheAnalysis.
func (c *Client) AnalyzeNiche(ctx context.Context, niche string, posts []NichePost) NicheAnalysis {
	if len(posts) > 30 {
		posts = posts[:30]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ты аналитик проблем пользователей. Проанализируй найденные посты по нише %q.\n\nПОСТЫ:\n", niche)
	for i, p := range posts {
		fmt.Fprintf(&b, "%d. [%s] %s (%d likes, %d comments)\n", i+1, p.Platform, utils.TruncateRunes(p.Title, 200), p.Likes, p.Comments)
	}
	b.WriteString(`
ЗАДАЧА:
1. Выдели 3-5 основных КАТЕГОРИЙ проблем (например: "Цена", "Качество", "Сервис")
2. Для каждой категории укажи количество постов и 1-2 примера
3. Сформулируй 3-5 ключевых ИНСАЙТОВ (что беспокоит людей больше всего)
4. Дай 2-3 РЕКОМЕНДАЦИИ для бизнеса

ФОРМАТ ОТВЕТА (строго JSON):
{"summary":"Краткое резюме в 2-3 предложениях","categories":[{"name":"Название категории","count":5,"examples":["пример 1"]}],"topInsights":["инсайт 1"],"recommendations":["рекомендация 1"]}

Отвечай ТОЛЬКО JSON, без markdown и пояснений.`)

	var out NicheAnalysis
	err := c.completeWithFallback(ctx, FallbackModels, ChatRequest{
		Messages:    []Message{{Role: "user", Content: b.String()}},
		Temperature: temperature(0.3),
		MaxTokens:   1500,
	}, func(content string) error {
		raw, ok := extractJSON(content, '{', '}')
		if !ok {
			return errors.New("no JSON object in model response")
		}
		out = NicheAnalysis{}
		return json.Unmarshal([]byte(raw), &out)
	})
	if err != nil {
		return FailedNicheAnalysis()
	}
	if out.Summary == "" {
		out.Summary = "Анализ завершён"
	}
	if out.Categories == nil {
		out.Categories = []NicheCategory{}
	}
	if out.TopInsights == nil {
		out.TopInsights = []string{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return out
}

// extractJSON returns the outermost left...right span of s, which tolerates
// prose and markdown fences around the payload.
func extractJSON(s string, left, right byte) (string, bool) {
	start := strings.IndexByte(s, left)
	end := strings.LastIndexByte(s, right)
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
