package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"hotel-review-ops/models"
)

// ReplyLanguage is the closed set of languages replies can be written in.
// Adding a language means extending every switch below; the compiler and the
// exhaustive fallback table keep the two in sync.
type ReplyLanguage int

const (
	LangEnglish ReplyLanguage = iota
	LangGeorgian
	LangRussian
	LangTurkish
)

// ParseReplyLanguage maps a review's language code onto a supported reply
// language. Unknown codes collapse to English.
func ParseReplyLanguage(code string) ReplyLanguage {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "ka":
		return LangGeorgian
	case "ru":
		return LangRussian
	case "tr":
		return LangTurkish
	default:
		return LangEnglish
	}
}

func (l ReplyLanguage) String() string {
	switch l {
	case LangGeorgian:
		return "Georgian"
	case LangRussian:
		return "Russian"
	case LangTurkish:
		return "Turkish"
	default:
		return "English"
	}
}

// Drafter produces a tone-adjusted draft reply for a review. A nil client
// (no API key, client construction failed) makes the deterministic fallback
// the only path, which keeps ingestion working without credentials.
type Drafter struct {
	client *genai.Client
	model  string
}

func NewDrafter(ctx context.Context, apiKey string) *Drafter {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		log.Println("drafter: no gemini api key, using fallback templates only")
		return &Drafter{}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		log.Printf("drafter: genai client init failed, using fallback templates: %v", err)
		return &Drafter{}
	}

	return &Drafter{client: client, model: "gemini-2.5-flash"}
}

// DraftReply returns a reply draft for the review. It never returns an empty
// string: any generation failure falls back to the canned template for the
// review's language and rating band.
func (d *Drafter) DraftReply(ctx context.Context, review models.Review) string {
	lang := ParseReplyLanguage(review.Language)

	if d == nil || d.client == nil {
		return fallbackReply(lang, review.Rating)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	prompt := buildReplyPrompt(review, lang)
	result, err := d.client.Models.GenerateContent(ctx, d.model, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("drafter: generation failed, using fallback: %v", err)
		return fallbackReply(lang, review.Rating)
	}
	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return fallbackReply(lang, review.Rating)
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return fallbackReply(lang, review.Rating)
	}
	return text
}

func propertyName() string {
	if name := os.Getenv("PROPERTY_NAME"); name != "" {
		return name
	}
	return "ORBI CITY"
}

func buildReplyPrompt(review models.Review, lang ReplyLanguage) string {
	var tone string
	switch {
	case review.Rating <= 2:
		tone = "Apologize sincerely, address the concerns raised, and offer to make it right on their next stay."
	case review.Rating <= 4:
		tone = "Thank the guest, acknowledge the specific points they raised, and note that their feedback helps the team improve."
	default:
		tone = "Be warm, express genuine gratitude and invite the guest back."
	}

	property := propertyName()
	return fmt.Sprintf(`You are a professional hotel manager responding to guest reviews for %s.

Guidelines:
- %s
- Keep the response concise (2-4 sentences).
- Respond in %s.
- Never offer discounts, refunds or any form of compensation; those decisions are made separately by a human.
- Sign as "%s Team".

Write a response to this %d-star review from %s:
"%s"`, property, tone, lang, property, review.Rating, review.ReviewerName, review.Content)
}

// fallbackReply selects a canned template by rating band and language. The
// switches are exhaustive over ReplyLanguage, so the result is never empty.
func fallbackReply(lang ReplyLanguage, rating int) string {
	property := propertyName()

	switch {
	case rating <= 2:
		switch lang {
		case LangGeorgian:
			return fmt.Sprintf("გმადლობთ გამოხმაურებისთვის. გულწრფელად ვწუხვართ, რომ თქვენი ვიზიტი მოლოდინს ვერ შეესაბამებოდა. თქვენი შენიშვნები გუნდს გადაეცა და აუცილებლად გამოვასწორებთ. — %s Team", property)
		case LangRussian:
			return fmt.Sprintf("Благодарим вас за отзыв. Нам искренне жаль, что ваше пребывание не оправдало ожиданий. Мы передали ваши замечания команде и обязательно всё исправим. — %s Team", property)
		case LangTurkish:
			return fmt.Sprintf("Değerlendirmeniz için teşekkür ederiz. Konaklamanızın beklentilerinizi karşılamamasından dolayı içtenlikle özür dileriz. Geri bildiriminizi ekibimize ilettik ve gerekli iyileştirmeleri yapacağız. — %s Team", property)
		default:
			return fmt.Sprintf("Thank you for your feedback. We are sincerely sorry your stay did not meet expectations. Your comments have been shared with our team and we will put them right. — %s Team", property)
		}
	case rating <= 4:
		switch lang {
		case LangGeorgian:
			return fmt.Sprintf("გმადლობთ, რომ დრო დაუთმეთ შეფასებას. გვიხარია, რომ ვიზიტი მოგეწონათ, და თქვენს შენიშვნებს გავითვალისწინებთ. — %s Team", property)
		case LangRussian:
			return fmt.Sprintf("Спасибо, что нашли время оставить отзыв. Рады, что вам в целом понравилось, и обязательно учтём ваши замечания. — %s Team", property)
		case LangTurkish:
			return fmt.Sprintf("Değerlendirmeniz için teşekkür ederiz. Konaklamanızdan memnun kalmanıza sevindik, belirttiğiniz noktaları dikkate alacağız. — %s Team", property)
		default:
			return fmt.Sprintf("Thank you for taking the time to share your experience. We are glad you enjoyed your stay and will take your comments on board. — %s Team", property)
		}
	default:
		switch lang {
		case LangGeorgian:
			return fmt.Sprintf("დიდი მადლობა ასეთი თბილი შეფასებისთვის! მოხარული ვიქნებით, კვლავ გიმასპინძლოთ. — %s Team", property)
		case LangRussian:
			return fmt.Sprintf("Большое спасибо за тёплый отзыв! Будем рады видеть вас снова. — %s Team", property)
		case LangTurkish:
			return fmt.Sprintf("Bu güzel değerlendirme için çok teşekkür ederiz! Sizi tekrar ağırlamaktan mutluluk duyarız. — %s Team", property)
		default:
			return fmt.Sprintf("Thank you so much for the wonderful review! We would be delighted to welcome you back. — %s Team", property)
		}
	}
}
