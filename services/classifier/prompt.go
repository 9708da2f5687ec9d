package classifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/internal/enum"
	"github.com/customeros/mailsorter/internal/utils"
)

var categoryDescriptions = map[enum.EmailCategory]string{
	enum.CategoryJobInterview:          "Job interviews, interview schedules, interview feedback",
	enum.CategoryWorkMeeting:           "Work meetings, team meetings, business calls",
	enum.CategoryPersonal:              "Personal communications from friends/family",
	enum.CategoryPromotional:           "Marketing emails, sales offers, promotions",
	enum.CategoryNewsletter:            "Newsletters, subscriptions, updates",
	enum.CategoryImportantNotification: "Bank alerts, bills, official notices",
	enum.CategorySocialMedia:           "Social media notifications, updates",
	enum.CategoryFinancial:             "Banking, investments, financial services",
	enum.CategoryTravel:                "Travel bookings, confirmations, itineraries",
	enum.CategoryOther:                 "Anything that doesn't fit above categories",
}

func buildPrompt(msg *dto.NormalizedMessage, bodyLimit int) string {
	body := utils.Truncate(msg.Body, bodyLimit)
	if bodyLimit > 0 && utf8.RuneCountInString(msg.Body) > bodyLimit {
		body += "..."
	}

	var sb strings.Builder
	sb.WriteString("Classify the following email into one of these categories and provide reasoning:\n\n")
	sb.WriteString("Categories:\n")
	for _, category := range enum.Categories {
		fmt.Fprintf(&sb, "- %s: %s\n", category, categoryDescriptions[category])
	}

	sb.WriteString("\nEmail Details:\n")
	fmt.Fprintf(&sb, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&sb, "From: %s\n", msg.From)
	fmt.Fprintf(&sb, "Body: %s\n\n", body)

	sb.WriteString("Respond with a single JSON object and nothing else:\n")
	sb.WriteString(`{"category": "category_name", "confidence": 0.95, "reasoning": "Brief explanation of why this email fits this category"}`)
	sb.WriteString("\n")

	return sb.String()
}
