package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel-review-ops/models"
)

func TestParseReplyLanguage(t *testing.T) {
	assert.Equal(t, LangEnglish, ParseReplyLanguage("en"))
	assert.Equal(t, LangGeorgian, ParseReplyLanguage("ka"))
	assert.Equal(t, LangRussian, ParseReplyLanguage("RU"))
	assert.Equal(t, LangTurkish, ParseReplyLanguage(" tr "))

	// unknown codes collapse to English
	assert.Equal(t, LangEnglish, ParseReplyLanguage("de"))
	assert.Equal(t, LangEnglish, ParseReplyLanguage(""))
}

func TestFallbackReplyNeverEmpty(t *testing.T) {
	languages := []ReplyLanguage{LangEnglish, LangGeorgian, LangRussian, LangTurkish}

	for _, lang := range languages {
		for rating := 1; rating <= 5; rating++ {
			reply := fallbackReply(lang, rating)
			assert.NotEmpty(t, reply, "lang %s rating %d", lang, rating)
			assert.Contains(t, reply, "Team")
		}
	}
}

func TestFallbackReplyTone(t *testing.T) {
	low := fallbackReply(LangEnglish, 1)
	assert.Contains(t, strings.ToLower(low), "sorry")

	high := fallbackReply(LangEnglish, 5)
	assert.Contains(t, strings.ToLower(high), "thank")
	assert.NotContains(t, strings.ToLower(high), "sorry")
}

func TestDraftReplyFallsBackWithoutClient(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	drafter := NewDrafter(context.Background(), "")
	review := models.Review{ReviewerName: "Ana", Rating: 1, Content: "Dirty room", Language: "en"}

	reply := drafter.DraftReply(context.Background(), review)

	assert.NotEmpty(t, reply)
	assert.Equal(t, fallbackReply(LangEnglish, 1), reply)
}

func TestDraftReplyNilDrafter(t *testing.T) {
	var drafter *Drafter
	review := models.Review{ReviewerName: "Ana", Rating: 5, Content: "Great stay", Language: "ru"}

	reply := drafter.DraftReply(context.Background(), review)
	assert.NotEmpty(t, reply)
}

func TestBuildReplyPrompt(t *testing.T) {
	review := models.Review{ReviewerName: "Ana", Rating: 2, Content: "Dirty room", Language: "ru"}

	prompt := buildReplyPrompt(review, LangRussian)

	assert.Contains(t, prompt, "Respond in Russian")
	assert.Contains(t, prompt, "Apologize")
	assert.Contains(t, prompt, "Never offer discounts")
	assert.Contains(t, prompt, "2-star review")
	assert.Contains(t, prompt, "Dirty room")
}
