package workflow

import (
	"strings"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
)

const (
	ReasonBlockedLeaseNote    = "blocked:lease_note"
	ReasonBlockedPropertyNote = "blocked:property_note"
	ReasonNoRentTransaction   = "no_rent_transaction"
	ReasonNoRate              = "no_rate"
)

// EligibleLease is a lease that passed filtering, with its resolved
// rent-bearing transaction line.
type EligibleLease struct {
	Lease           models.LeaseEligibilityRecord
	RentTransaction models.RecurringTransaction
}

// ExclusionRecord explains why a lease was dropped from the run.
type ExclusionRecord struct {
	LeaseId string `json:"lease_id"`
	Reason  string `json:"reason"`
}

// EligibilityInput carries the per-lease context fetched up front so the
// partition itself stays a pure function.
type EligibilityInput struct {
	LeaseNotes       map[string][]models.Note
	BuildingNotes    map[string][]models.Note
	Transactions     map[string][]models.RecurringTransaction
	BlockedPhrases   []string
	RentGlAccountIds []string
}

// PartitionEligible splits leases into included (with rent transaction)
// and excluded (with reason code). A lease is excluded when any
// associated note matches the block list, or when no transaction line
// maps to a configured rent GL account.
func PartitionEligible(leases []models.LeaseEligibilityRecord, in EligibilityInput) ([]EligibleLease, []ExclusionRecord) {
	rentGl := make(map[string]bool, len(in.RentGlAccountIds))
	for _, id := range in.RentGlAccountIds {
		rentGl[id] = true
	}

	var included []EligibleLease
	var excluded []ExclusionRecord
	for _, lease := range leases {
		if noteBlocked(in.LeaseNotes[lease.LeaseId], in.BlockedPhrases) {
			excluded = append(excluded, ExclusionRecord{LeaseId: lease.LeaseId, Reason: ReasonBlockedLeaseNote})
			continue
		}
		if noteBlocked(in.BuildingNotes[lease.PropertyId], in.BlockedPhrases) {
			excluded = append(excluded, ExclusionRecord{LeaseId: lease.LeaseId, Reason: ReasonBlockedPropertyNote})
			continue
		}
		txn, ok := findRentTransaction(in.Transactions[lease.LeaseId], rentGl)
		if !ok {
			excluded = append(excluded, ExclusionRecord{LeaseId: lease.LeaseId, Reason: ReasonNoRentTransaction})
			continue
		}
		included = append(included, EligibleLease{Lease: lease, RentTransaction: txn})
	}
	return included, excluded
}

func noteBlocked(notes []models.Note, phrases []string) bool {
	for _, note := range notes {
		text := strings.ToLower(note.Subject + " " + note.Body)
		for _, phrase := range phrases {
			phrase = strings.ToLower(strings.TrimSpace(phrase))
			if phrase != "" && strings.Contains(text, phrase) {
				return true
			}
		}
	}
	return false
}

func findRentTransaction(txns []models.RecurringTransaction, rentGl map[string]bool) (models.RecurringTransaction, bool) {
	for _, txn := range txns {
		if rentGl[txn.GlAccountId] {
			return txn, true
		}
	}
	return models.RecurringTransaction{}, false
}
