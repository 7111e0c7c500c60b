package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TournamentDraft is raw tournament input as submitted by a client. Pointer
// fields distinguish "absent" from zero so validation can demand presence.
type TournamentDraft struct {
	TournamentName   *string         `json:"tournamentName"`
	EventDate        *Date           `json:"eventDate"`
	ParticipantCount *int64          `json:"participantCount"`
	WithdrawalCount  *int64          `json:"withdrawalCount"`
	TotalRevenue     *Money          `json:"totalRevenue"`
	WechatPayment    *Money          `json:"wechatPayment"`
	RefundBalance    *Money          `json:"refundBalance"`
	TournamentType   *TournamentType `json:"tournamentType"`
	IsCertified      *bool           `json:"isCertified"`
	MedalCount       *int64          `json:"medalCount"`
	MedalPrice       *Money          `json:"medalPrice"`
}

// Validation messages, in the order they are reported.
const (
	MsgNameRequired          = "比赛名称不能为空"
	MsgDateRequired          = "举办日期不能为空"
	MsgParticipantCount      = "参赛人数必须大于等于0"
	MsgWithdrawalCount       = "退赛人数必须大于等于0"
	MsgTotalRevenue          = "流水总计必须大于等于0"
	MsgWechatPayment         = "微信支付必须大于等于0"
	MsgRefundBalance         = "退款结余必须大于等于0"
	MsgMedalCount            = "奖牌数量必须大于等于0"
	MsgMedalPrice            = "奖牌单价必须大于等于0"
	MsgInvalidTournamentType = "请选择正确的比赛类型"

	MsgParticipantLimit = "参赛人数超出上限"
	MsgWithdrawalLimit  = "退赛人数超出上限"
	MsgMedalCountLimit  = "奖牌数量超出上限"
	MsgMedalCostLimit   = "奖牌费用超出上限"
)

// MaxCount bounds participant, withdrawal and medal counts. Together with
// the amount bound in ParseMoney it keeps every derived fee within int64
// cents.
const MaxCount int64 = 1_000_000_000

// Validate returns one message per failed check; an empty slice means the
// draft may be stored.
func (d TournamentDraft) Validate() []string {
	problems := []string{}
	if d.TournamentName == nil || strings.TrimSpace(*d.TournamentName) == "" {
		problems = append(problems, MsgNameRequired)
	}
	if d.EventDate == nil || d.EventDate.IsZero() {
		problems = append(problems, MsgDateRequired)
	}
	counts := []struct {
		v   *int64
		msg string
	}{
		{d.ParticipantCount, MsgParticipantCount},
		{d.WithdrawalCount, MsgWithdrawalCount},
	}
	for _, c := range counts {
		if c.v == nil || *c.v < 0 {
			problems = append(problems, c.msg)
		}
	}
	amounts := []struct {
		v   *Money
		msg string
	}{
		{d.TotalRevenue, MsgTotalRevenue},
		{d.WechatPayment, MsgWechatPayment},
		{d.RefundBalance, MsgRefundBalance},
	}
	for _, a := range amounts {
		if a.v == nil || a.v.IsNegative() {
			problems = append(problems, a.msg)
		}
	}
	if d.MedalCount == nil || *d.MedalCount < 0 {
		problems = append(problems, MsgMedalCount)
	}
	if d.MedalPrice == nil || d.MedalPrice.IsNegative() {
		problems = append(problems, MsgMedalPrice)
	}
	if d.TournamentType == nil || !d.TournamentType.Valid() {
		problems = append(problems, MsgInvalidTournamentType)
	}
	return append(problems, d.RangeProblems()...)
}

// RangeProblems reports supplied values too large to compute fees for.
// Absent and negative values are left to Validate.
func (d TournamentDraft) RangeProblems() []string {
	var problems []string
	tooMany := func(v *int64) bool { return v != nil && *v > MaxCount }
	if tooMany(d.ParticipantCount) {
		problems = append(problems, MsgParticipantLimit)
	}
	if tooMany(d.WithdrawalCount) {
		problems = append(problems, MsgWithdrawalLimit)
	}
	if tooMany(d.MedalCount) {
		problems = append(problems, MsgMedalCountLimit)
	} else if d.MedalCount != nil {
		price := DefaultMedalPrice
		if d.MedalPrice != nil {
			price = *d.MedalPrice
		}
		cost := decimal.NewFromInt(*d.MedalCount).Mul(price.Decimal())
		if cost.Abs().GreaterThan(maxAmount) {
			problems = append(problems, MsgMedalCostLimit)
		}
	}
	return problems
}

// Input applies defaults for absent fields: zero for counts, amounts and
// flags, DefaultMedalPrice for the medal price. It performs no checks.
func (d TournamentDraft) Input() TournamentInput {
	in := TournamentInput{MedalPrice: DefaultMedalPrice}
	if d.TournamentName != nil {
		in.TournamentName = strings.TrimSpace(*d.TournamentName)
	}
	if d.EventDate != nil {
		in.EventDate = *d.EventDate
	}
	if d.ParticipantCount != nil {
		in.ParticipantCount = *d.ParticipantCount
	}
	if d.WithdrawalCount != nil {
		in.WithdrawalCount = *d.WithdrawalCount
	}
	if d.TotalRevenue != nil {
		in.TotalRevenue = *d.TotalRevenue
	}
	if d.WechatPayment != nil {
		in.WechatPayment = *d.WechatPayment
	}
	if d.RefundBalance != nil {
		in.RefundBalance = *d.RefundBalance
	}
	if d.TournamentType != nil {
		in.TournamentType = *d.TournamentType
	}
	if d.IsCertified != nil {
		in.IsCertified = *d.IsCertified
	}
	if d.MedalCount != nil {
		in.MedalCount = *d.MedalCount
	}
	if d.MedalPrice != nil {
		in.MedalPrice = *d.MedalPrice
	}
	return in
}

// DraftOf converts a stored input back into a fully populated draft.
func DraftOf(in TournamentInput) TournamentDraft {
	return TournamentDraft{
		TournamentName:   &in.TournamentName,
		EventDate:        &in.EventDate,
		ParticipantCount: &in.ParticipantCount,
		WithdrawalCount:  &in.WithdrawalCount,
		TotalRevenue:     &in.TotalRevenue,
		WechatPayment:    &in.WechatPayment,
		RefundBalance:    &in.RefundBalance,
		TournamentType:   &in.TournamentType,
		IsCertified:      &in.IsCertified,
		MedalCount:       &in.MedalCount,
		MedalPrice:       &in.MedalPrice,
	}
}
