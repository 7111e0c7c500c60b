package core

import (
	"errors"
	"time"
)

// Tournament types. The values are the labels the product has always
// persisted and displayed, so they double as wire values.
const (
	AssociationOrganization TournamentType = "协会机构"
	UniversityLeague        TournamentType = "高校联赛"
	UniversityCampusEvent   TournamentType = "高校校园赛"
)

// DefaultMedalPrice applies when a caller omits the medal unit price.
var DefaultMedalPrice = Yuan(18)

type (
	TournamentType string

	// TournamentInput is the caller-supplied part of a record.
	TournamentInput struct {
		TournamentName   string         `json:"tournamentName"`
		EventDate        Date           `json:"eventDate"`
		ParticipantCount int64          `json:"participantCount"`
		WithdrawalCount  int64          `json:"withdrawalCount"`
		TotalRevenue     Money          `json:"totalRevenue"`
		WechatPayment    Money          `json:"wechatPayment"`
		RefundBalance    Money          `json:"refundBalance"`
		TournamentType   TournamentType `json:"tournamentType"`
		IsCertified      bool           `json:"isCertified"`
		MedalCount       int64          `json:"medalCount"`
		MedalPrice       Money          `json:"medalPrice"`
	}

	// Fees are the derived amounts. Only CalculateFees produces them.
	Fees struct {
		ProcessingFee    Money `json:"processingFee"`
		WechatFee        Money `json:"wechatFee"`
		CertificationFee Money `json:"certificationFee"`
		TotalFee         Money `json:"totalFee"`
		MedalCost        Money `json:"medalCost"`
		HostSettlement   Money `json:"hostSettlement"`
		TotalIncome      Money `json:"totalIncome"`
	}

	// Tournament is a persisted record.
	Tournament struct {
		ID string `json:"_id"`
		TournamentInput
		Fees
		IsSettled bool      `json:"isSettled"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// FeeInput is the subset of a record the calculator reads.
	FeeInput struct {
		TotalRevenue     Money
		ParticipantCount int64
		TournamentType   TournamentType
		IsCertified      bool
		MedalCount       int64
		MedalPrice       Money
	}
)

var ErrInvalidAmount = errors.New("invalid amount")

// TournamentTypes lists the accepted types in display order.
func TournamentTypes() []TournamentType {
	return []TournamentType{AssociationOrganization, UniversityLeague, UniversityCampusEvent}
}

// Valid reports whether t is one of the known tournament types.
func (t TournamentType) Valid() bool {
	switch t {
	case AssociationOrganization, UniversityLeague, UniversityCampusEvent:
		return true
	}
	return false
}

func (t TournamentType) String() string { return string(t) }

// FeeInput projects the calculator's inputs out of in.
func (in TournamentInput) FeeInput() FeeInput {
	return FeeInput{
		TotalRevenue:     in.TotalRevenue,
		ParticipantCount: in.ParticipantCount,
		TournamentType:   in.TournamentType,
		IsCertified:      in.IsCertified,
		MedalCount:       in.MedalCount,
		MedalPrice:       in.MedalPrice,
	}
}

// NewTournament builds a fresh, unsettled record from validated input.
// Derived fields are always recomputed here; there is no other way to
// obtain a Tournament with fees.
func NewTournament(in TournamentInput, now time.Time) Tournament {
	return Tournament{
		TournamentInput: in,
		Fees:            CalculateFees(in.FeeInput()),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Revise replaces the raw fields of t, recomputes every derived field and
// refreshes UpdatedAt. Identity, settlement and CreatedAt are preserved.
func (t Tournament) Revise(in TournamentInput, now time.Time) Tournament {
	t.TournamentInput = in
	t.Fees = CalculateFees(in.FeeInput())
	t.UpdatedAt = now
	return t
}
