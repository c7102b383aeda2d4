package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const recentSettlementRows = 5

// renderSummaryCard renders the aggregate mining summary. A nil summary
// renders nothing; absent blocks render as zeros.
func renderSummaryCard(s *domain.MiningSummary, compact bool) string {
	if s == nil {
		return ""
	}
	active := s.Active()
	yld := s.YLDStatus
	pct, _ := yld.PercentageUsed.Float64()

	if compact {
		content := formatter.RenderKeyValues([][2]string{
			{"会话", fmt.Sprintf("%d", active.Count)},
			{"待领取", formatter.FormatNumber(active.TotalPendingRewards)},
			{"粮食", formatter.FormatNumber(s.Resources.Food) + " · " + formatter.FormatNumber(s.FoodSustainabilityHours) + "小时"},
			{"YLD 剩余", formatter.FormatNumber(yld.Remaining) + " " + formatter.RenderCompactBar(pct/100, 10, false)},
		})
		return formatter.RenderCompactBox("挖矿概览", strings.TrimRight(content, "\n"))
	}

	left := formatter.RenderKeyValues([][2]string{
		{"进行中会话", fmt.Sprintf("%d", active.Count)},
		{"待领取总额", formatter.StyleGreen.Render(formatter.FormatNumber(active.TotalPendingRewards))},
		{"粮食消耗", formatter.FormatNumber(active.TotalFoodConsumption) + "/小时"},
		{"粮食储备", formatter.FormatNumber(s.Resources.Food)},
		{"可持续", formatter.FormatNumber(s.FoodSustainabilityHours) + "小时"},
		{"工具", fmt.Sprintf("空闲 %d · 使用中 %d · 共 %d", s.Tools.Idle, s.Tools.InUse, s.Tools.Total)},
	})
	right := formatter.RenderKeyValues([][2]string{
		{"YLD 剩余", formatter.FormatNumber(yld.Remaining) + " / " + formatter.FormatNumber(yld.DailyLimit)},
		{"今日已用", formatter.RenderProgress(pct/100, 16)},
		{"当前速率", formatter.FormatNumber(yld.CurrentHourlyRate) + "/小时"},
		{"今日产出", formatter.FormatNumber(s.TodayProduction.Total)},
		{"已发放", formatter.FormatNumber(s.TodayProduction.Distributed.Amount)},
		{"待发放", formatter.FormatNumber(s.TodayProduction.Pending.Amount) + " · " + formatter.FormatNumber(s.TodayProduction.Pending.Hours) + "小时"},
	})

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, strings.TrimRight(left, "\n"), "    ", strings.TrimRight(right, "\n")))

	if len(s.RecentSettlements) > 0 {
		b.WriteString("\n\n")
		b.WriteString(formatter.Dim("最近结算"))
		b.WriteString("\n")
		b.WriteString(renderSettlements(s.RecentSettlements, recentSettlementRows))
	}
	return formatter.RenderBox("挖矿概览", strings.TrimRight(b.String(), "\n"))
}

func renderSettlements(settlements []domain.Settlement, limit int) string {
	if limit > 0 && len(settlements) > limit {
		settlements = settlements[:limit]
	}
	rows := make([][]string, 0, len(settlements))
	for _, st := range settlements {
		rows = append(rows, []string{
			st.Hour,
			formatter.ResourceBadge(st.ResourceType),
			formatter.FormatNumber(st.NetOutput),
			fmt.Sprintf("%d", st.ToolCount),
			fmt.Sprintf("%d分钟", st.SettledMinutes),
		})
	}
	return formatter.RenderTable([]string{"时间", "资源", "净产出", "工具", "结算时长"}, rows)
}
