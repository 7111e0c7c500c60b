package core

import "github.com/shopspring/decimal"

var (
	standardProcessingRate = decimal.RequireFromString("0.0108")
	campusProcessingRate   = decimal.RequireFromString("0.004")
	wechatRate             = decimal.RequireFromString("0.006")
	associationMinimumFee  = decimal.NewFromInt(100)
)

// CalculateFees derives every fee and settlement amount from in.
//
// All intermediate values are exact decimals; each output is rounded to two
// places only once, at the end, so TotalFee, HostSettlement and TotalIncome
// are computed from unrounded components. The minimum fee of 100 applies to
// association events only and replaces the computed total when it is lower.
// The function is total: it never fails and has no side effects.
func CalculateFees(in FeeInput) Fees {
	revenue := in.TotalRevenue.Decimal()

	processing := decimal.Zero
	switch in.TournamentType {
	case AssociationOrganization, UniversityLeague:
		processing = revenue.Mul(standardProcessingRate)
	case UniversityCampusEvent:
		processing = revenue.Mul(campusProcessingRate)
	}

	wechat := revenue.Mul(wechatRate)

	certification := decimal.Zero
	if in.TournamentType == AssociationOrganization && in.IsCertified {
		certification = decimal.NewFromInt(in.ParticipantCount)
	}

	total := processing.Add(wechat).Add(certification)
	if in.TournamentType == AssociationOrganization && total.LessThan(associationMinimumFee) {
		total = associationMinimumFee
	}

	medal := decimal.NewFromInt(in.MedalCount).Mul(in.MedalPrice.Decimal())
	host := revenue.Sub(total).Sub(medal)
	income := certification.Add(processing)

	return Fees{
		ProcessingFee:    MoneyFromDecimal(processing),
		WechatFee:        MoneyFromDecimal(wechat),
		CertificationFee: MoneyFromDecimal(certification),
		TotalFee:         MoneyFromDecimal(total),
		MedalCost:        MoneyFromDecimal(medal),
		HostSettlement:   MoneyFromDecimal(host),
		TotalIncome:      MoneyFromDecimal(income),
	}
}
