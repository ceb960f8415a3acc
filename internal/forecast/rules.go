package forecast

import "github.com/runwaydev/runway/internal/model"

// DefaultRules is the stock categorization table. Order matters: more
// specific counterparties come before generic keywords. Businesses with
// unusual vendors extend or replace this table; the engine only requires
// that some ordered table is consulted.
var DefaultRules = []Rule{
	// Revenue
	{Category: "Sales Revenue", Subcategory: "Card Processing", Direction: model.Inflow,
		Keywords: []string{"stripe", "square inc", "paypal", "shopify payments", "merch dep"}},
	{Category: "Sales Revenue", Subcategory: "ACH/Wire", Direction: model.Inflow,
		Keywords: []string{"ach credit", "wire in", "incoming wire", "remote deposit"}},
	{Category: "Interest Income", Direction: model.Inflow,
		Keywords: []string{"interest paid", "interest earned"}},

	// Payroll and people
	{Category: "Payroll", Direction: model.Outflow,
		Keywords: []string{"gusto", "adp", "paychex", "payroll", "justworks", "rippling"}},
	{Category: "Contractors", Direction: model.Outflow,
		Keywords: []string{"upwork", "fiverr", "contractor"}},
	{Category: "Benefits", Direction: model.Outflow,
		Keywords: []string{"health ins", "dental", "vision plan", "401k", "guideline"}},

	// Taxes
	{Category: "Taxes", Subcategory: "Federal", Direction: model.Outflow,
		Keywords: []string{"irs", "eftps", "us treasury"}},
	{Category: "Taxes", Subcategory: "State/Local", Direction: model.Outflow,
		Keywords: []string{"franchise tax", "dept of revenue", "state tax", "sales tax"}},

	// Occupancy
	{Category: "Rent & Lease", Direction: model.Outflow,
		Keywords: []string{"rent", "lease pmt", "property mgmt", "wework"}},
	{Category: "Utilities", Direction: model.Outflow,
		Keywords: []string{"electric", "gas co", "water dept", "comcast", "verizon", "at&t", "internet"}},

	// Operations
	{Category: "Software & Subscriptions", Direction: model.Outflow,
		Keywords: []string{"aws", "amazon web", "google cloud", "gcp", "github", "slack", "zoom",
			"atlassian", "notion", "quickbooks", "adobe"}},
	{Category: "Insurance", Direction: model.Outflow,
		Keywords: []string{"insurance", "hiscox", "hartford", "geico"}},
	{Category: "Professional Services", Direction: model.Outflow,
		Keywords: []string{"legal", "attorney", "cpa", "accounting", "consulting"}},
	{Category: "Marketing", Direction: model.Outflow,
		Keywords: []string{"google ads", "facebook ads", "meta platforms", "mailchimp", "linkedin"}},
	{Category: "Shipping & Postage", Direction: model.Outflow,
		Keywords: []string{"usps", "fedex", "ups ", "shipstation"}},
	{Category: "Supplies & Inventory", Direction: model.Outflow,
		Keywords: []string{"costco", "staples", "uline", "amzn mktp", "amazon.com"}},
	{Category: "Travel & Meals", Direction: model.Outflow,
		Keywords: []string{"united air", "delta air", "marriott", "hilton", "uber", "lyft", "doordash"}},

	// Financing
	{Category: "Loan Payments", Direction: model.Outflow,
		Keywords: []string{"loan pmt", "sba loan", "note payment", "principal"}},
	{Category: "Credit Card Payments", Direction: model.Outflow,
		Keywords: []string{"amex epayment", "chase card", "capital one pmt", "card autopay"}},
	{Category: "Bank Fees", Direction: model.Outflow,
		Keywords: []string{"service charge", "monthly fee", "wire fee", "overdraft", "nsf fee", "analysis charge"}},

	// Transfers match either direction
	{Category: "Transfers",
		Keywords: []string{"transfer to", "transfer from", "online transfer", "zelle", "venmo"}},
	{Category: "Owner Draws", Direction: model.Outflow,
		Keywords: []string{"owner draw", "distribution", "member draw"}},
	{Category: "Owner Contributions", Direction: model.Inflow,
		Keywords: []string{"owner deposit", "capital contribution"}},

	// Generic, near the bottom on purpose
	{Category: "Sales Revenue", Direction: model.Inflow,
		Keywords: []string{"deposit", "payment received", "invoice"}},
	{Category: "Refunds", Direction: model.Inflow,
		Keywords: []string{"refund", "reversal", "chargeback credit"}},
}
