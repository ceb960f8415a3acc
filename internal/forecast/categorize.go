package forecast

import (
	"strings"

	"github.com/runwaydev/runway/internal/model"
)

// Fallback categories when no rule matches. Categorization is total:
// every transaction gets a category.
const (
	CategoryOtherIncome  = "Other Income"
	CategoryOtherExpense = "Other Operating Expenses"
)

// Rule maps descriptions to a category. Rules are data, not code: the
// table is replaceable and inspectable, and rule order is significant —
// the first match wins.
type Rule struct {
	Category    string
	Subcategory string
	// Keywords are matched case-insensitively as substrings of the
	// transaction description. Any keyword matching qualifies the rule.
	Keywords []string
	// Direction restricts the rule to inflows or outflows when set.
	Direction model.Direction
}

func (r Rule) matches(desc string, dir model.Direction) bool {
	if r.Direction != "" && r.Direction != dir {
		return false
	}
	for _, kw := range r.Keywords {
		if strings.Contains(desc, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Categorize annotates each transaction with a category from the rule
// table. Pure: returns a new slice, inputs are not mutated.
func Categorize(txns []model.Transaction, rules []Rule) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	for i, t := range txns {
		cat, sub := categoryFor(t.Description, t.Direction, rules)
		t.Category = cat
		t.Subcategory = sub
		out[i] = t
	}
	return out
}

func categoryFor(description string, dir model.Direction, rules []Rule) (string, string) {
	desc := strings.ToLower(description)
	for _, r := range rules {
		if r.matches(desc, dir) {
			return r.Category, r.Subcategory
		}
	}
	if dir == model.Inflow {
		return CategoryOtherIncome, ""
	}
	return CategoryOtherExpense, ""
}
