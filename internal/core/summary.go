package core

// Totals are sums over a set of records. Money sums use the stored,
// already rounded per-record values.
type Totals struct {
	Revenue        Money `json:"totalRevenue"`
	Income         Money `json:"totalIncome"`
	Participants   int64 `json:"totalParticipants"`
	Tournaments    int64 `json:"totalTournaments"`
	SettledCount   int64 `json:"settledCount"`
	CertifiedCount int64 `json:"certifiedCount"`
}

// MonthlyStats is a one-month slice of Totals.
type MonthlyStats struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	Revenue      Money `json:"monthlyRevenue"`
	Income       Money `json:"monthlyIncome"`
	Tournaments  int64 `json:"monthlyTournaments"`
	Participants int64 `json:"monthlyParticipants"`
}

// Dashboard is the combined payload of the landing page: all-time totals,
// the current month and the latest records, flattened into one object.
type Dashboard struct {
	Totals
	MonthlyStats
	Recent []Tournament `json:"recentTournaments"`
}

// Add folds t into the running totals.
func (s *Totals) Add(t Tournament) {
	s.Revenue = s.Revenue.Add(t.TotalRevenue)
	s.Income = s.Income.Add(t.TotalIncome)
	s.Participants += t.ParticipantCount
	s.Tournaments++
	if t.IsSettled {
		s.SettledCount++
	}
	if t.IsCertified {
		s.CertifiedCount++
	}
}

// Summarize is the reference scan-and-sum over records. Store-native
// aggregation must return the same Totals for the same set.
func Summarize(records []Tournament) Totals {
	var s Totals
	for _, t := range records {
		s.Add(t)
	}
	return s
}

// Monthly narrows s to the fields reported for a month.
func (s Totals) Monthly(year, month int) MonthlyStats {
	return MonthlyStats{
		Year:         year,
		Month:        month,
		Revenue:      s.Revenue,
		Income:       s.Income,
		Tournaments:  s.Tournaments,
		Participants: s.Participants,
	}
}
