// Package export renders tournament records as spreadsheet rows for CSV
// and XLSX downloads. Both formats share one column layout.
package export

import (
	"fmt"
	"strconv"
	"time"

	"saishi/internal/core"
)

// Headers is the fixed column layout of every export.
var Headers = []string{
	"比赛名称",
	"举办日期",
	"参赛人数",
	"退赛人数",
	"流水总计",
	"微信支付",
	"退款结余",
	"手续费",
	"微信手续费",
	"认证费",
	"总手续费",
	"奖牌数量",
	"奖牌费用",
	"主办结算费用",
	"总收入",
	"比赛类型",
	"是否认证赛",
	"是否结算",
	"创建时间",
}

const (
	CertifiedYes = "是"
	CertifiedNo  = "否"
	Settled      = "已结算"
	Unsettled    = "未结算"

	createdAtLayout = "2006-01-02 15:04"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to JSON for anything unrecognised.
func ParseFormat(s string) Format {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s)
	}
	return FormatJSON
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json; charset=utf-8"
}

// Filename names an export file after the local day it was produced.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("tournaments_export_%s.%s", now.In(time.Local).Format(core.DateLayout), f)
}

// Cells returns the values of t in Headers order. Money and counts are
// numeric so spreadsheets can total them; everything else is text.
func Cells(t core.Tournament) []interface{} {
	return []interface{}{
		t.TournamentName,
		t.EventDate.String(),
		t.ParticipantCount,
		t.WithdrawalCount,
		t.TotalRevenue.Float(),
		t.WechatPayment.Float(),
		t.RefundBalance.Float(),
		t.ProcessingFee.Float(),
		t.WechatFee.Float(),
		t.CertificationFee.Float(),
		t.TotalFee.Float(),
		t.MedalCount,
		t.MedalCost.Float(),
		t.HostSettlement.Float(),
		t.TotalIncome.Float(),
		t.TournamentType.String(),
		yesNo(t.IsCertified),
		settledToken(t.IsSettled),
		formatCreatedAt(t.CreatedAt),
	}
}

// Row is the text form of Cells, with money fixed at two decimals.
func Row(t core.Tournament) []string {
	return []string{
		t.TournamentName,
		t.EventDate.String(),
		strconv.FormatInt(t.ParticipantCount, 10),
		strconv.FormatInt(t.WithdrawalCount, 10),
		t.TotalRevenue.String(),
		t.WechatPayment.String(),
		t.RefundBalance.String(),
		t.ProcessingFee.String(),
		t.WechatFee.String(),
		t.CertificationFee.String(),
		t.TotalFee.String(),
		strconv.FormatInt(t.MedalCount, 10),
		t.MedalCost.String(),
		t.HostSettlement.String(),
		t.TotalIncome.String(),
		t.TournamentType.String(),
		yesNo(t.IsCertified),
		settledToken(t.IsSettled),
		formatCreatedAt(t.CreatedAt),
	}
}

func yesNo(b bool) string {
	if b {
		return CertifiedYes
	}
	return CertifiedNo
}

func settledToken(b bool) string {
	if b {
		return Settled
	}
	return Unsettled
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(createdAtLayout)
}
