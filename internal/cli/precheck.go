package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/service"
)

// preCheckBlockers lists the reasons a new session cannot start yet.
func preCheckBlockers(d *service.Dashboard) []string {
	var out []string
	if d == nil || len(d.Lands) == 0 {
		out = append(out, "没有可用的土地")
	}
	if len(d.EligibleTools()) == 0 {
		out = append(out, "没有可用的工具 (需状态正常、未使用且耐久大于 0)")
	}
	return out
}

func renderPreCheck(d *service.Dashboard) string {
	if d == nil {
		d = &service.Dashboard{}
	}
	var b strings.Builder
	summary := d.Summary

	pairs := [][2]string{
		{"可用土地", fmt.Sprintf("%d", len(d.Lands))},
		{"可用工具", fmt.Sprintf("%d", len(d.EligibleTools()))},
	}
	if summary != nil {
		pairs = append(pairs,
			[2]string{"空闲工具", fmt.Sprintf("%d", summary.Tools.Idle)},
			[2]string{"粮食储备", formatter.FormatNumber(summary.Resources.Food)},
			[2]string{"可持续", formatter.FormatNumber(summary.FoodSustainabilityHours) + "小时"},
			[2]string{"YLD 剩余", formatter.FormatNumber(summary.YLDStatus.Remaining)},
		)
	}
	b.WriteString(formatter.RenderKeyValues(pairs))

	blockers := preCheckBlockers(d)
	b.WriteString("\n")
	if len(blockers) == 0 {
		b.WriteString(formatter.StyleGreen.Render("✔ 可以开始挖矿"))
		b.WriteString("\n\n")
		b.WriteString(formatter.Dim("enter: 继续  esc: 关闭"))
	} else {
		for _, reason := range blockers {
			b.WriteString(formatter.StyleRed.Render("✖ " + reason))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(formatter.Dim("esc: 关闭"))
	}
	return formatter.RenderBox("开始前检查", b.String())
}
