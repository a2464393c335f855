package models

// Note is a free-form note attached to a lease or a building in the
// property-management system. Operators use these to block automations.
type Note struct {
	Id      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
