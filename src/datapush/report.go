// report.go
package datapush

import (
	"fmt"
	"strings"

	"CyclisticAnalysis/src/processor"
)

// ReportSection 报告里的一个汇总段落
type ReportSection struct {
	Title     string
	GroupCols []string
	Summaries []processor.RideSummary
}

// BuildReport 把各分组汇总拼成给市场团队看的文字报告
// 报告主线：会员和散客的骑行习惯差异，用于"散客转会员"的营销叙事
func BuildReport(period string, sections []ReportSection) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Cyclistic骑行数据分析报告（期间：%s）\n", period))
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, sec := range sections {
		b.WriteString(fmt.Sprintf("\n【%s】\n", sec.Title))
		for _, s := range sec.Summaries {
			keys := make([]string, 0, len(sec.GroupCols))
			for _, col := range sec.GroupCols {
				keys = append(keys, s.Keys[col])
			}
			b.WriteString(fmt.Sprintf("%s：%d 次，平均 %.1f 分钟\n",
				strings.Join(keys, " / "), s.NumRides, s.AvgRideLength))
		}
	}

	return b.String()
}
