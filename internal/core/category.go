package core

// Category is one member of the fixed triage taxonomy
type Category string

// Action-tier categories need human attention and are never auto-archived
const (
	CategoryUrgent        Category = "urgent"
	CategoryTodo          Category = "todo"
	CategoryWaiting       Category = "waiting"
	CategorySecurityAlert Category = "security_alert"
)

// Reference-tier categories are auto-filed
const (
	CategoryCreatorNewsletters Category = "creator_newsletters"
	CategorySocialCommunity    Category = "social_community"
	CategoryPromotions         Category = "promotions"
	CategoryFinancial          Category = "financial"
	CategoryPurchases          Category = "purchases"
	CategoryMisc               Category = "misc"
)

// ActionCategories lists the action tier in report order
var ActionCategories = []Category{
	CategoryUrgent,
	CategoryTodo,
	CategoryWaiting,
	CategorySecurityAlert,
}

// ReferenceCategories lists the reference tier in report order
var ReferenceCategories = []Category{
	CategoryCreatorNewsletters,
	CategorySocialCommunity,
	CategoryPromotions,
	CategoryFinancial,
	CategoryPurchases,
	CategoryMisc,
}

// AllCategories lists every category, action tier first
var AllCategories = append(append([]Category{}, ActionCategories...), ReferenceCategories...)

// categoryLabels maps each category to its canonical mailbox label.
// Only these labels are ever removed or replaced by the engine.
var categoryLabels = map[Category]string{
	CategoryUrgent:             "Triage/Urgent",
	CategoryTodo:               "Triage/Todo",
	CategoryWaiting:            "Triage/Waiting",
	CategorySecurityAlert:      "Triage/Security-Alert",
	CategoryCreatorNewsletters: "Triage/Newsletters",
	CategorySocialCommunity:    "Triage/Social",
	CategoryPromotions:         "Triage/Promotions",
	CategoryFinancial:          "Triage/Financial",
	CategoryPurchases:          "Triage/Purchases",
	CategoryMisc:               "Triage/Misc",
}

// categoryDefinitions are the one-line definitions sent to the classifier
var categoryDefinitions = map[Category]string{
	CategoryUrgent:             "time-sensitive mail that needs a reply or action today",
	CategoryTodo:               "mail that asks the recipient to do something, not urgent",
	CategoryWaiting:            "mail where the recipient is waiting on someone else",
	CategorySecurityAlert:      "sign-in alerts, password resets, fraud or breach notices",
	CategoryCreatorNewsletters: "editorial newsletters and long-form creator content",
	CategorySocialCommunity:    "notifications from social networks, forums and communities",
	CategoryPromotions:         "marketing, sales, discounts and product announcements",
	CategoryFinancial:          "bills, statements, invoices and payment confirmations",
	CategoryPurchases:          "order confirmations, shipping and delivery updates",
	CategoryMisc:               "anything that fits no other category",
}

// IsValid reports whether c is a member of the taxonomy
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// IsAction reports whether c belongs to the action tier
func (c Category) IsAction() bool {
	switch c {
	case CategoryUrgent, CategoryTodo, CategoryWaiting, CategorySecurityAlert:
		return true
	}
	return false
}

// IsReference reports whether c belongs to the reference tier
func (c Category) IsReference() bool {
	return c.IsValid() && !c.IsAction()
}

// Label returns the canonical mailbox label for c
func (c Category) Label() string {
	return categoryLabels[c]
}

// Definition returns the one-line definition for c
func (c Category) Definition() string {
	return categoryDefinitions[c]
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory coerces an external verdict value into the taxonomy.
// Unknown or empty values fall back to misc.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.IsValid() {
		return c
	}
	return CategoryMisc
}

// ManagedLabels returns the full set of canonical labels, keyed by name.
// Labels outside this set are never touched.
func ManagedLabels() map[string]Category {
	out := make(map[string]Category, len(categoryLabels))
	for c, name := range categoryLabels {
		out[name] = c
	}
	return out
}
