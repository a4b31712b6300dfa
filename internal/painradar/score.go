package painradar

import (
	"math"
	"sort"
	"strings"
)

// problemIndicators are stems that signal a complaint or a request for help.
var problemIndicators = []string{
	"проблем", "ошибк", "не работа", "не могу", "помоги",
	"подскажи", "что делать", "как быть", "устал", "надоел",
	"бесит", "разочаров", "обман", "кину", "сломал", "испорти",
	"не получается", "не выходит", "застрял", "нужен совет",
	"кто сталкивался", "у кого было", "как решить", "как исправить",
	"косяк", "баг", "глюк", "фейл", "провал", "неудач",
	"problem", "issue", "error", "bug", "help", "stuck",
	"frustrated", "broken", "doesn't work", "can't", "failed",
}

// Engagement weighs comments over shares over likes.
func Engagement(likes, comments, shares int) int {
	return comments*3 + shares*2 + likes
}

// EngagementScore maps engagement onto [0,100] on a log scale.
func EngagementScore(engagement int) int {
	if engagement <= 0 {
		return 0
	}
	return min(100, int(math.Round(math.Log10(float64(engagement)+1)*20)))
}

// ProblemScore is 20 points per distinct indicator found in text, capped at 100.
func ProblemScore(text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, ind := range problemIndicators {
		if strings.Contains(lower, ind) {
			n++
		}
	}
	return min(100, n*20)
}

// TotalScore blends engagement (60%) and problem signal (40%).
func TotalScore(engagementScore, problemScore int) int {
	return int(math.Round(float64(engagementScore)*0.6 + float64(problemScore)*0.4))
}

// ScoredPost is a post with its relevance scores.
type ScoredPost struct {
	Post
	EngagementScore int `json:"engagementScore"`
	ProblemScore    int `json:"problemScore"`
	TotalScore      int `json:"totalScore"`
}

func ScorePost(p Post) ScoredPost {
	es := EngagementScore(p.Engagement)
	ps := ProblemScore(p.Title + " " + p.Content)
	return ScoredPost{Post: p, EngagementScore: es, ProblemScore: ps, TotalScore: TotalScore(es, ps)}
}

// Rank scores posts and orders them by total score, highest first. Ties keep
// their input order.
func Rank(posts []Post) []ScoredPost {
	out := make([]ScoredPost, len(posts))
	for i, p := range posts {
		out[i] = ScorePost(p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalScore > out[j].TotalScore })
	return out
}

// TopProblems keeps posts with engagementScore and problemScore of at least
// 20, at most n of them.
func TopProblems(posts []ScoredPost, n int) []ScoredPost {
	out := make([]ScoredPost, 0, n)
	for _, p := range posts {
		if len(out) == n {
			break
		}
		if p.EngagementScore >= 20 && p.ProblemScore >= 20 {
			out = append(out, p)
		}
	}
	return out
}
