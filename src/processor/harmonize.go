// harmonize.go
package processor

import (
	"fmt"

	"CyclisticAnalysis/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 统一schema的列名
const (
	ColRideID        = "ride_id"
	ColStartedAt     = "started_at"
	ColEndedAt       = "ended_at"
	ColMemberCasual  = "member_casual"
	ColRideLength    = "ride_length"
	ColDayOfWeek     = "day_of_week"
	ColMonth         = "month"
	ColStartHour     = "start_hour"
	ColDayType       = "day_type"
	ColUserTypeGroup = "user_type_group"
	ColStartDate     = "start_date"
	ColStartTimeOnly = "start_time_only"
	ColEndDate       = "end_date"
	ColEndTimeOnly   = "end_time_only"
)

// 分类取值
const (
	DayWeekday   = "Weekday"
	DayWeekend   = "Weekend"
	GroupAnnual  = "Annual"
	GroupCasual  = "Casual"
	GroupUnknown = "Unknown"
)

// CanonicalColumns 输出CSV的列顺序
var CanonicalColumns = []string{
	ColRideID, ColStartedAt, ColEndedAt, ColMemberCasual,
	ColRideLength, ColDayOfWeek, ColMonth, ColStartHour,
	ColDayType, ColUserTypeGroup,
	ColStartDate, ColStartTimeOnly, ColEndDate, ColEndTimeOnly,
}

// 合并阶段只负责这四列，其余列由派生阶段补齐
var sourceColumns = []string{ColRideID, ColStartedAt, ColEndedAt, ColMemberCasual}

// Coalesce 返回首个非缺失值，两个都缺失时返回空串
func Coalesce(primary, secondary string) string {
	if !isMissing(primary) {
		return primary
	}
	if !isMissing(secondary) {
		return secondary
	}
	return ""
}

// gota把字符串列的NA渲染成"NaN"
func isMissing(v string) bool {
	return v == "" || v == "NaN"
}

// Harmonize 把两个年份的源表合并成统一schema
// 每个规范列先取同名列的值，缺失时按Fallback表回退到旧列名
// 源表特有的其余列在这里全部丢掉，避免下游误用
func (p *Pipeline) Harmonize(frames ...dataframe.DataFrame) (dataframe.DataFrame, error) {
	if len(frames) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("没有可合并的源表")
	}

	unified := dataframe.DataFrame{}
	for i, frame := range frames {
		canonical, err := p.harmonizeFrame(frame)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("第%d个源表合并失败: %w", i+1, err)
		}
		if i == 0 {
			unified = canonical
			continue
		}
		unified = unified.RBind(canonical)
		if unified.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("源表纵向合并失败: %w", unified.Err)
		}
	}

	p.logInfo(fmt.Sprintf("schema合并完成，共 %d 行", unified.Nrow()))
	return unified, nil
}

func (p *Pipeline) harmonizeFrame(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	n := df.Nrow()
	cols := make([]series.Series, 0, len(sourceColumns))

	for _, name := range sourceColumns {
		legacy := p.Dcfg.GetFallback(name)

		var primary, secondary []string
		if utils.HasColumn(df, name) {
			primary = df.Col(name).Records()
		}
		if legacy != "" && utils.HasColumn(df, legacy) {
			secondary = df.Col(legacy).Records()
		}
		if primary == nil && secondary == nil {
			return dataframe.DataFrame{}, fmt.Errorf("源表缺少 %s 列(备选列 %s 也不存在)", name, legacy)
		}

		values := make([]string, n)
		for i := 0; i < n; i++ {
			var pv, sv string
			if primary != nil {
				pv = primary[i]
			}
			if secondary != nil {
				sv = secondary[i]
			}
			values[i] = Coalesce(pv, sv)
		}

		// 两个年份的时间写法不一致，统一成标准格式
		if name == ColStartedAt || name == ColEndedAt {
			for i := range values {
				values[i] = utils.NormalizeTime(values[i])
			}
		}

		cols = append(cols, series.New(values, series.String, name))
	}

	out := dataframe.New(cols...)
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}
