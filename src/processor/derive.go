// derive.go
package processor

import (
	"fmt"
	"math"
	"time"

	"CyclisticAnalysis/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Derive 在合并后的表上按固定顺序补齐派生列
// 依赖合并阶段已经产出规范的 started_at/ended_at，顺序不能调换
func (p *Pipeline) Derive(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, name := range sourceColumns {
		if !utils.HasColumn(df, name) {
			return dataframe.DataFrame{}, fmt.Errorf("派生前缺少 %s 列，需要先完成schema合并", name)
		}
	}

	n := df.Nrow()
	started := parseTimeColumn(df.Col(ColStartedAt))
	ended := parseTimeColumn(df.Col(ColEndedAt))

	// 1. ride_length: 结束减开始，单位分钟；时间缺失时记NaN，留给过滤阶段丢弃
	rideLength := make([]float64, n)
	for i := 0; i < n; i++ {
		if started[i].IsZero() || ended[i].IsZero() {
			rideLength[i] = math.NaN()
			continue
		}
		rideLength[i] = ended[i].Sub(started[i]).Minutes()
	}
	df = df.Mutate(series.New(rideLength, series.Float, ColRideLength))

	// 2. day_of_week
	dayOfWeek := make([]string, n)
	for i := 0; i < n; i++ {
		if !started[i].IsZero() {
			dayOfWeek[i] = started[i].Weekday().String()
		}
	}
	df = df.Mutate(series.New(dayOfWeek, series.String, ColDayOfWeek))

	// 3. month
	month := make([]string, n)
	for i := 0; i < n; i++ {
		if !started[i].IsZero() {
			month[i] = started[i].Month().String()
		}
	}
	df = df.Mutate(series.New(month, series.String, ColMonth))

	// 4. start_hour: 0-23，时间缺失记-1(这种行随后都会被过滤掉)
	startHour := make([]int, n)
	for i := 0; i < n; i++ {
		if started[i].IsZero() {
			startHour[i] = -1
			continue
		}
		startHour[i] = started[i].Hour()
	}
	df = df.Mutate(series.New(startHour, series.Int, ColStartHour))

	// 5. day_type: 周六周日记Weekend，其余记Weekday
	dayType := make([]string, n)
	for i := 0; i < n; i++ {
		if dayOfWeek[i] == time.Saturday.String() || dayOfWeek[i] == time.Sunday.String() {
			dayType[i] = DayWeekend
		} else {
			dayType[i] = DayWeekday
		}
	}
	df = df.Mutate(series.New(dayType, series.String, ColDayType))

	// 6. user_type_group: 按词表映射原始标签
	// 词表之外的标签默认单列为Unknown并告警，开关打开时并入Annual
	foldUnknown := p.Dcfg.GetSwitch("未识别用户类型并入年卡") == 1
	labels := df.Col(ColMemberCasual).Records()
	groups := make([]string, n)
	unknown := 0
	for i, label := range labels {
		g := p.Dcfg.GetUserTypeGroup(label)
		if g == "" {
			unknown++
			if foldUnknown {
				g = GroupAnnual
			} else {
				g = GroupUnknown
			}
		}
		groups[i] = g
	}
	df = df.Mutate(series.New(groups, series.String, ColUserTypeGroup))
	if unknown > 0 {
		p.logWarning(fmt.Sprintf("发现 %d 条词表之外的用户类型标签(并入年卡开关=%v)", unknown, foldUnknown))
	}

	// 7. 日期和时刻拆分列，方便后续透视
	df = df.Mutate(series.New(splitDates(started), series.String, ColStartDate))
	df = df.Mutate(series.New(splitClocks(started), series.String, ColStartTimeOnly))
	df = df.Mutate(series.New(splitDates(ended), series.String, ColEndDate))
	df = df.Mutate(series.New(splitClocks(ended), series.String, ColEndTimeOnly))

	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("派生列计算失败: %w", df.Err)
	}
	return df, nil
}

func parseTimeColumn(col series.Series) []time.Time {
	parsed := make([]time.Time, col.Len())
	for i := 0; i < col.Len(); i++ {
		t, err := utils.ParseTime(col.Elem(i))
		if err != nil {
			continue // 解析失败按缺失处理
		}
		parsed[i] = t
	}
	return parsed
}

func splitDates(times []time.Time) []string {
	out := make([]string, len(times))
	for i, t := range times {
		if !t.IsZero() {
			out[i] = t.Format("2006-01-02")
		}
	}
	return out
}

func splitClocks(times []time.Time) []string {
	out := make([]string, len(times))
	for i, t := range times {
		if !t.IsZero() {
			out[i] = t.Format("15:04:05")
		}
	}
	return out
}
