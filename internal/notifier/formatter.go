package notifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"RSIWatch/internal/model"
)

const (
	DefaultAnalysisLabel = "RSI 极值分析提醒"

	overboughtAdvice = "> 💡 超买区域，建议考虑分批止盈，注意回调风险"
	oversoldAdvice   = "> 💡 超卖区域，可能出现反弹，可关注入场机会"
	riskDisclaimer   = "⚠️ 投资有风险，以上信号仅供参考，不构成投资建议"

	timestampLayout = "2006-01-02 15:04:05"
	missingPrice    = "--"
)

// Composer renders extreme events into an alert title and Markdown body.
type Composer struct {
	thresholds    model.ThresholdConfig
	analysisLabel string
}

// NewComposer creates a Composer. An empty analysisLabel falls back to DefaultAnalysisLabel.
func NewComposer(thresholds model.ThresholdConfig, analysisLabel string) *Composer {
	if analysisLabel == "" {
		analysisLabel = DefaultAnalysisLabel
	}
	return &Composer{thresholds: thresholds, analysisLabel: analysisLabel}
}

// Compose renders events. An empty event list yields an empty message, which callers
// must treat as "do not notify". For fixed arguments the output is byte-identical.
func (c *Composer) Compose(events []model.ExtremeEvent, timeframeLabel string, now time.Time) model.AlertMessage {
	if len(events) == 0 {
		return model.AlertMessage{}
	}

	var overbought, oversold []model.ExtremeEvent
	for _, ev := range events {
		switch ev.Direction {
		case model.Overbought:
			overbought = append(overbought, ev)
		case model.Oversold:
			oversold = append(oversold, ev)
		}
	}

	title := fmt.Sprintf("RSI-%d个超买,%d个超卖信号", len(overbought), len(oversold))
	if timeframeLabel != "" {
		title = timeframeLabel + " | " + title
	}

	var b strings.Builder
	header := c.analysisLabel
	if timeframeLabel != "" {
		header = fmt.Sprintf("%s (%s)", c.analysisLabel, timeframeLabel)
	}
	b.WriteString(fmt.Sprintf("## 📊 %s\n\n", header))
	b.WriteString(fmt.Sprintf("**分析时间**: %s\n\n", now.Format(timestampLayout)))

	if len(overbought) > 0 {
		b.WriteString(fmt.Sprintf("### 🔴 超买信号 (%d个)\n\n", len(overbought)))
		writeTable(&b, overbought)
		b.WriteString(overboughtAdvice + "\n\n")
	}
	if len(oversold) > 0 {
		b.WriteString(fmt.Sprintf("### 🟢 超卖信号 (%d个)\n\n", len(oversold)))
		writeTable(&b, oversold)
		b.WriteString(oversoldAdvice + "\n\n")
	}

	b.WriteString("---\n\n")
	b.WriteString("**阈值说明**:\n")
	for _, t := range c.thresholds.Periods {
		b.WriteString(fmt.Sprintf("- %s: 超买 ≥ %s, 超卖 ≤ %s\n", t.Label(), formatCutoff(t.Overbought), formatCutoff(t.Oversold)))
	}
	b.WriteString("\n" + riskDisclaimer)

	return model.AlertMessage{Title: title, Body: b.String()}
}

func writeTable(b *strings.Builder, events []model.ExtremeEvent) {
	b.WriteString("| 币种 | 指标 | RSI值 | 最新价格 |\n")
	b.WriteString("|------|------|-------|----------|\n")
	for _, ev := range events {
		b.WriteString(fmt.Sprintf("| %s | %s | %.2f | %s |\n", ev.Symbol, ev.PeriodLabel, ev.RSIValue, FormatPrice(ev.ReferencePrice)))
	}
	b.WriteString("\n")
}

// FormatPrice renders a price as $X,XXX.XX, or "--" when absent.
func FormatPrice(p *float64) string {
	if p == nil {
		return missingPrice
	}
	return "$" + humanize.FormatFloat("#,###.##", *p)
}

func formatCutoff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
