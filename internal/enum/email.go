package enum

import "strings"

type EmailCategory string

const (
	CategoryJobInterview          EmailCategory = "job_interview"
	CategoryWorkMeeting           EmailCategory = "work_meeting"
	CategoryPersonal              EmailCategory = "personal"
	CategoryPromotional           EmailCategory = "promotional"
	CategoryNewsletter            EmailCategory = "newsletter"
	CategoryImportantNotification EmailCategory = "important_notification"
	CategorySocialMedia           EmailCategory = "social_media"
	CategoryFinancial             EmailCategory = "financial"
	CategoryTravel                EmailCategory = "travel"
	CategoryOther                 EmailCategory = "other"
)

// Categories is the closed set a verdict may carry, in prompt order.
var Categories = []EmailCategory{
	CategoryJobInterview,
	CategoryWorkMeeting,
	CategoryPersonal,
	CategoryPromotional,
	CategoryNewsletter,
	CategoryImportantNotification,
	CategorySocialMedia,
	CategoryFinancial,
	CategoryTravel,
	CategoryOther,
}

func (c EmailCategory) String() string {
	return string(c)
}

func (c EmailCategory) IsValid() bool {
	for _, category := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ParseEmailCategory normalizes case and whitespace before checking membership.
func ParseEmailCategory(value string) (EmailCategory, bool) {
	category := EmailCategory(strings.ToLower(strings.TrimSpace(value)))
	return category, category.IsValid()
}

type EmailPriority string

const (
	PriorityHigh   EmailPriority = "high"
	PriorityMedium EmailPriority = "medium"
	PriorityLow    EmailPriority = "low"
)

func (p EmailPriority) String() string {
	return string(p)
}

var highPriorityCategories = map[EmailCategory]struct{}{
	CategoryJobInterview:          {},
	CategoryImportantNotification: {},
	CategoryFinancial:             {},
}

// PriorityForCategory is the only source of a record's priority.
func PriorityForCategory(category EmailCategory) EmailPriority {
	if _, ok := highPriorityCategories[category]; ok {
		return PriorityHigh
	}
	return PriorityMedium
}
