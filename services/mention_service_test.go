package services_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/brandlens/brandlens-workflows/services"
)

func TestExtractMentionsReturnsRecordPerBrand(t *testing.T) {
	svc := services.NewMentionService()

	brands := []string{"Acme", "Globex", "Initech"}
	response := "Globex is the best CRM on the market. Acme is a solid runner-up."

	records := svc.ExtractMentions(response, brands)

	if len(records) != len(brands) {
		t.Fatalf("Expected %d records, got %d", len(brands), len(records))
	}
	for i, record := range records {
		if record.BrandName != brands[i] {
			t.Errorf("Record %d: expected brand %s, got %s", i, brands[i], record.BrandName)
		}
	}

	byName := recordsByName(records)
	if !byName["Globex"].Mentioned || !byName["Acme"].Mentioned {
		t.Errorf("Expected Globex and Acme to be mentioned")
	}
	if byName["Initech"].Mentioned {
		t.Errorf("Initech should not be mentioned")
	}
	if byName["Initech"].Position != nil {
		t.Errorf("Unmentioned brand should have nil position, got %d", *byName["Initech"].Position)
	}
}

func TestExtractMentionsWordBoundaries(t *testing.T) {
	svc := services.NewMentionService()

	tests := []struct {
		name      string
		text      string
		brand     string
		mentioned bool
		count     int
	}{
		{"exact word", "I love Cat products", "Cat", true, 1},
		{"inside longer word", "Browse the Catalog for deals", "Cat", false, 0},
		{"case insensitive", "ACME and acme and Acme", "Acme", true, 3},
		{"name with dot", "Try Notion.so for notes", "Notion.so", true, 1},
		{"punctuation adjacent", "We picked Acme, obviously.", "Acme", true, 1},
		{"empty response", "", "Acme", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := svc.ExtractMentions(tt.text, []string{tt.brand})
			if len(records) != 1 {
				t.Fatalf("Expected 1 record, got %d", len(records))
			}
			if records[0].Mentioned != tt.mentioned {
				t.Errorf("Expected mentioned=%v, got %v", tt.mentioned, records[0].Mentioned)
			}
			if records[0].MentionCount != tt.count {
				t.Errorf("Expected count=%d, got %d", tt.count, records[0].MentionCount)
			}
		})
	}
}

func TestExtractMentionsPositionOrder(t *testing.T) {
	svc := services.NewMentionService()

	response := "Initech leads, then Globex, and finally Acme rounds out the list."

	// Input order deliberately differs from appearance order
	records := svc.ExtractMentions(response, []string{"Acme", "Globex", "Initech"})
	byName := recordsByName(records)

	expectations := map[string]int{"Initech": 1, "Globex": 2, "Acme": 3}
	for name, want := range expectations {
		record := byName[name]
		if record.Position == nil {
			t.Fatalf("%s: expected position %d, got nil", name, want)
		}
		if *record.Position != want {
			t.Errorf("%s: expected position %d, got %d", name, want, *record.Position)
		}
	}
}

func TestExtractMentionsSentiment(t *testing.T) {
	svc := services.NewMentionService()

	tests := []struct {
		name      string
		text      string
		sentiment string
	}{
		{"positive", "Acme is the best CRM tool and is highly rated by users", "positive"},
		{"negative", "Acme is expensive and the interface feels clunky", "negative"},
		{"neutral", "Acme is a CRM tool founded in 2015", "neutral"},
		{"mixed", "Acme is reliable but expensive", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := svc.ExtractMentions(tt.text, []string{"Acme"})
			if records[0].Sentiment == nil {
				t.Fatalf("Expected sentiment %s, got nil", tt.sentiment)
			}
			if *records[0].Sentiment != tt.sentiment {
				t.Errorf("Expected sentiment %s, got %s (score %v)", tt.sentiment, *records[0].Sentiment, *records[0].SentimentScore)
			}
		})
	}
}

func TestExtractMentionsContextWindow(t *testing.T) {
	svc := services.NewMentionService()

	padding := strings.Repeat("x", 400)
	response := padding + " Acme " + padding

	records := svc.ExtractMentions(response, []string{"Acme"})
	if records[0].Context == nil {
		t.Fatal("Expected context, got nil")
	}
	context := *records[0].Context
	if !strings.Contains(context, "Acme") {
		t.Errorf("Context should contain the mention, got %q", context)
	}
	// 150 chars each side plus the match itself
	if len(context) > 310 {
		t.Errorf("Context too long: %d chars", len(context))
	}

	// Mention at the start of text clips cleanly
	records = svc.ExtractMentions("Acme "+padding, []string{"Acme"})
	if records[0].Context == nil || !strings.HasPrefix(*records[0].Context, "Acme") {
		t.Errorf("Expected context anchored at text start")
	}
}

func TestExtractMentionsContextWindowRuneBoundaries(t *testing.T) {
	svc := services.NewMentionService()

	// Multi-byte runes on both sides of the clip points must not be split.
	accents := strings.Repeat("é", 200)
	response := accents + " Acme " + accents

	records := svc.ExtractMentions(response, []string{"Acme"})
	if records[0].Context == nil {
		t.Fatal("Expected context, got nil")
	}
	context := *records[0].Context
	if !utf8.ValidString(context) {
		t.Errorf("Context window produced invalid UTF-8: %q", context)
	}
	if !strings.Contains(context, "Acme") {
		t.Errorf("Context should contain the mention, got %q", context)
	}
}

func TestExtractMentionsRecommendation(t *testing.T) {
	svc := services.NewMentionService()

	tests := []struct {
		name        string
		text        string
		recommended bool
	}{
		{"direct recommend", "I recommend Acme for small teams", true},
		{"recommend using", "We recommend using Acme here", true},
		{"is the best", "Acme is the best option available", true},
		{"best preceding", "The best choice for startups is Acme", true},
		{"suggest", "I'd suggest Acme if budget matters", true},
		{"plain mention", "Acme was founded in 2015 in Ohio", false},
		{"other brand recommended", "I recommend Globex over Acme", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := svc.ExtractMentions(tt.text, []string{"Acme"})
			if records[0].IsRecommended != tt.recommended {
				t.Errorf("Expected recommended=%v for %q", tt.recommended, tt.text)
			}
		})
	}
}

func recordsByName(records []services.MentionRecord) map[string]services.MentionRecord {
	byName := make(map[string]services.MentionRecord, len(records))
	for _, record := range records {
		byName[record.BrandName] = record
	}
	return byName
}
