// aggregate.go
package processor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// RideSummary 一个分组键组合的汇总结果
// 报表和图表层只消费这个结构，不直接碰DataFrame
type RideSummary struct {
	Keys          map[string]string // 分组列 -> 取值
	NumRides      int               // 骑行次数
	AvgRideLength float64           // 平均时长(分钟)
}

// 星期和月份按日历序排序，其余分组列按字典序
var weekdayOrder = map[string]int{
	"Monday": 1, "Tuesday": 2, "Wednesday": 3, "Thursday": 4,
	"Friday": 5, "Saturday": 6, "Sunday": 7,
}

var monthOrder = map[string]int{
	"January": 1, "February": 2, "March": 3, "April": 4,
	"May": 5, "June": 6, "July": 7, "August": 8,
	"September": 9, "October": 10, "November": 11, "December": 12,
}

// Summarize 按一到多个分组列汇总骑行次数和平均时长
// 结果按分组列升序排列，多列时先按第一列排
func (p *Pipeline) Summarize(df dataframe.DataFrame, groupCols ...string) ([]RideSummary, error) {
	if len(groupCols) == 0 {
		return nil, fmt.Errorf("至少需要一个分组列")
	}

	grouped := df.GroupBy(groupCols...)
	if grouped.Err != nil {
		return nil, fmt.Errorf("按 %s 分组失败: %w", strings.Join(groupCols, ","), grouped.Err)
	}

	var summaries []RideSummary
	for _, g := range grouped.GetGroups() {
		if g.Nrow() == 0 {
			continue
		}
		keys := make(map[string]string, len(groupCols))
		for _, col := range groupCols {
			keys[col] = g.Col(col).Elem(0).String()
		}
		summaries = append(summaries, RideSummary{
			Keys:          keys,
			NumRides:      g.Nrow(),
			AvgRideLength: g.Col(ColRideLength).Mean(),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		for _, col := range groupCols {
			c := compareKey(col, summaries[i].Keys[col], summaries[j].Keys[col])
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	return summaries, nil
}

func compareKey(col, a, b string) int {
	var order map[string]int
	switch col {
	case ColDayOfWeek:
		order = weekdayOrder
	case ColMonth:
		order = monthOrder
	}
	if order != nil {
		oa, oka := order[a]
		ob, okb := order[b]
		if oka && okb {
			return oa - ob
		}
	}
	return strings.Compare(a, b)
}

// SummaryDataFrame 把汇总结果转回DataFrame，供Excel导出使用
func SummaryDataFrame(summaries []RideSummary, groupCols []string) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(groupCols)+2)

	for _, col := range groupCols {
		values := make([]string, len(summaries))
		for i, s := range summaries {
			values[i] = s.Keys[col]
		}
		cols = append(cols, series.New(values, series.String, col))
	}

	counts := make([]int, len(summaries))
	avgs := make([]float64, len(summaries))
	for i, s := range summaries {
		counts[i] = s.NumRides
		avgs[i] = s.AvgRideLength
	}
	cols = append(cols, series.New(counts, series.Int, "num_rides"))
	cols = append(cols, series.New(avgs, series.Float, "avg_ride_length"))

	return dataframe.New(cols...)
}
