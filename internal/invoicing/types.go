package invoicing

// invoiceListResponse is the wire shape of the outstanding-invoices
// endpoint.
type invoiceListResponse struct {
	Invoices []wireInvoice `json:"invoices"`
}

// wireInvoice is one invoice as the invoicing service reports it.
// Amounts are decimal strings, dates are YYYY-MM-DD, and due_date may
// be empty when the client was never given explicit terms.
type wireInvoice struct {
	ID         string `json:"id"`
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	Amount     string `json:"amount"`
	IssueDate  string `json:"issue_date"`
	DueDate    string `json:"due_date,omitempty"`
	Terms      string `json:"terms,omitempty"`
	Status     string `json:"status"`
}
