package notifier

import (
	"fmt"
	"strings"

	"RSIWatch/internal/model"
)

var banner = strings.Repeat("=", 50)

// FormatSummary renders the console table of every symbol's RSI, one block per period.
func FormatSummary(rows []model.SymbolRSI, periods []int) string {
	var b strings.Builder
	b.WriteString("\n" + banner + "\n")
	b.WriteString("RSI 结果摘要\n")
	b.WriteString(banner + "\n")

	for _, period := range periods {
		b.WriteString(fmt.Sprintf("\n%s Results:\n", model.PeriodLabel(period)))
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("%8s: %s\n", row.Symbol, describeResult(row.Result(period))))
		}
	}
	return b.String()
}

func describeResult(r model.RSIResult) string {
	switch r.Status {
	case model.RSIValue:
		return fmt.Sprintf("%6.2f", r.Value)
	case model.RSIInsufficientData:
		return "insufficient data"
	case model.RSIFetchError:
		if r.Detail == "" {
			return "Failed to fetch data"
		}
		return "Failed to fetch data: " + r.Detail
	default:
		return r.Status.String()
	}
}

// FormatOutcome renders the final message block printed after a run.
func FormatOutcome(msg model.AlertMessage) string {
	var b strings.Builder
	b.WriteString("\n" + banner + "\n")
	b.WriteString("最终发送的通知消息\n")
	b.WriteString(banner + "\n")
	if msg.IsEmpty() {
		b.WriteString("没有发现极端RSI值，无需发送提醒。\n")
	} else {
		b.WriteString(fmt.Sprintf("标题: %s\n", msg.Title))
		b.WriteString(fmt.Sprintf("内容:\n%s\n", msg.Body))
	}
	b.WriteString(banner + "\n")
	return b.String()
}

// FormatConfig renders the thresholds and delivery endpoints for the /config command.
func FormatConfig(thresholds model.ThresholdConfig, endpoints []EndpointInfo) string {
	rule := strings.Repeat("=", 40)
	var b strings.Builder
	b.WriteString(rule + "\n当前配置\n" + rule + "\n")
	b.WriteString("RSI 阈值:\n")
	for _, t := range thresholds.Periods {
		b.WriteString(fmt.Sprintf("  %s: 超买 ≥ %s, 超卖 ≤ %s\n", t.Label(), formatCutoff(t.Overbought), formatCutoff(t.Oversold)))
	}
	b.WriteString("推送接口:\n")
	for _, ep := range endpoints {
		b.WriteString(fmt.Sprintf("  %s:\n", ep.Name))
		if ep.Target != "" {
			b.WriteString(fmt.Sprintf("    %s\n", ep.Target))
		}
	}
	b.WriteString(fmt.Sprintf("总计配置了 %d 个推送接口", len(endpoints)))
	return b.String()
}
