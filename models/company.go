package models

// GlAccount is one general-ledger account from the property-management
// chart of accounts.
type GlAccount struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type TaskCategory struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type CompanyProfile struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type DocumentTemplate struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}
