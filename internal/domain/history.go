package domain

import (
	"sort"

	"github.com/samber/lo"
)

// HistoryEntry is a visit tagged with its owner for the history feed.
type HistoryEntry struct {
	Visit
	PatientName string     `json:"patientName"`
	PatientCPF  string     `json:"patientCpf,omitempty"`
	Collection  Collection `json:"collection"`
}

// AllVisits flattens every visit of every patient, most recent first.
// Order among equal timestamps is unspecified.
func AllVisits(db *Database) []HistoryEntry {
	if db == nil {
		return []HistoryEntry{}
	}

	entries := make([]HistoryEntry, 0)
	for _, c := range Collections {
		entries = append(entries, lo.FlatMap(*db.Patients(c), func(p Patient, _ int) []HistoryEntry {
			return lo.Map(p.Visits, func(v Visit, _ int) HistoryEntry {
				return HistoryEntry{Visit: v, PatientName: p.Nome, PatientCPF: p.CPF, Collection: c}
			})
		})...)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RegisteredAt.After(entries[j].RegisteredAt)
	})
	return entries
}
