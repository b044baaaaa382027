// services/mention_service.go
package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

const contextWindowRadius = 150

type mentionService struct{}

func NewMentionService() MentionService {
	return &mentionService{}
}

// Phrases counted when scoring sentiment around a mention. Matching is
// plain substring, case-insensitive, against the context window.
var positivePhrases = []string{
	"best", "excellent", "great", "leading", "top-rated", "highly rated",
	"recommended", "popular", "reliable", "trusted", "innovative",
	"powerful", "easy to use", "outstanding", "impressive", "favorite",
	"well-regarded", "robust",
}

var negativePhrases = []string{
	"expensive", "clunky", "poor", "difficult", "slow", "limited",
	"worst", "unreliable", "outdated", "complicated", "frustrating",
	"lacking", "weak", "buggy", "overpriced", "confusing", "dated",
}

// ExtractMentions scans one response for every tracked brand and returns one
// record per brand, mentioned or not. Matching is case-insensitive on word
// boundaries so "Cat" never matches inside "Catalog". Positions are 1-based
// in order of first appearance; brands tied at the same offset keep their
// input order.
func (s *mentionService) ExtractMentions(responseText string, brandNames []string) []MentionRecord {
	records := make([]MentionRecord, len(brandNames))
	type hit struct {
		recordIdx int
		offset    int
	}
	var hits []hit

	for i, name := range brandNames {
		records[i] = MentionRecord{BrandName: name}
		if responseText == "" {
			continue
		}

		re, err := brandPattern(name)
		if err != nil {
			fmt.Printf("[ExtractMentions] ⚠️ Skipping unmatchable brand name %q: %v\n", name, err)
			continue
		}

		matches := re.FindAllStringIndex(responseText, -1)
		if len(matches) == 0 {
			continue
		}

		offset := matches[0][0]
		records[i].Mentioned = true
		records[i].MentionCount = len(matches)

		context := contextWindow(responseText, offset)
		records[i].Context = &context

		score, label := scoreSentiment(context)
		records[i].Sentiment = &label
		records[i].SentimentScore = &score

		records[i].IsRecommended = isRecommended(responseText, name)

		hits = append(hits, hit{recordIdx: i, offset: offset})
	}

	// Rank mentioned brands by first appearance; stable sort keeps input
	// order when two brands first appear at the same offset.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].offset < hits[b].offset
	})
	for rank, h := range hits {
		position := rank + 1
		records[h.recordIdx].Position = &position
	}

	return records
}

// brandPattern compiles a word-boundary, case-insensitive matcher for a
// brand name. The name is quoted so dots and other metacharacters in names
// like "Notion.so" match literally.
func brandPattern(name string) (*regexp.Regexp, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("empty brand name")
	}
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(trimmed) + `\b`)
}

// contextWindow returns the trimmed slice of text around the first match,
// clipped to the text bounds. Clip points advance to the next rune boundary
// so a multi-byte character is never split.
func contextWindow(text string, offset int) string {
	start := offset - contextWindowRadius
	if start < 0 {
		start = 0
	}
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	end := offset + contextWindowRadius
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}

// scoreSentiment counts distinct lexicon phrases in the context window and
// normalizes the difference into [-1, 1]. Above 0.2 reads positive, below
// -0.2 negative, everything else neutral.
func scoreSentiment(context string) (float64, string) {
	lowered := strings.ToLower(context)

	positives := 0
	for _, phrase := range positivePhrases {
		if strings.Contains(lowered, phrase) {
			positives++
		}
	}
	negatives := 0
	for _, phrase := range negativePhrases {
		if strings.Contains(lowered, phrase) {
			negatives++
		}
	}

	denominator := positives
	if negatives > denominator {
		denominator = negatives
	}
	if denominator < 1 {
		denominator = 1
	}

	score := float64(positives-negatives) / float64(denominator)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	label := models.SentimentNeutral
	if score > 0.2 {
		label = models.SentimentPositive
	} else if score < -0.2 {
		label = models.SentimentNegative
	}
	return score, label
}

// Recommendation templates checked against the full response, not just the
// context window, so "I recommend X" at the top still counts for a brand
// detailed further down.
var recommendationTemplates = []string{
	`(?is)\brecommend(?:s|ed)?\s+(?:using\s+|trying\s+)?%s\b`,
	`(?is)\b%s\s+is\s+(?:the\s+)?best\b`,
	`(?is)\bbest\b[^.!?]{0,120}?\b%s\b`,
	`(?is)\b%s\s+is\s+(?:a\s+|the\s+|an\s+)?(?:top|great|excellent|solid)\s+(?:choice|option|pick)\b`,
	`(?is)\b(?:suggest|try|go\s+with)\s+%s\b`,
}

func isRecommended(responseText, brandName string) bool {
	quoted := regexp.QuoteMeta(strings.TrimSpace(brandName))
	for _, template := range recommendationTemplates {
		re, err := regexp.Compile(fmt.Sprintf(template, quoted))
		if err != nil {
			continue
		}
		if re.MatchString(responseText) {
			return true
		}
	}
	return false
}
