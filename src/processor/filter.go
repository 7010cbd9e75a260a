// filter.go
package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 单次骑行时长上限：一天
const MaxRideMinutes = 1440.0

// FilterValid 仅保留 0 < ride_length <= 1440 的行
// 负时长、零时长、超过一天的和时间缺失(NaN)的行全部静默丢弃
// 丢弃数量记入日志，便于审计
func (p *Pipeline) FilterValid(df dataframe.DataFrame) dataframe.DataFrame {
	before := df.Nrow()

	out := df.Filter(dataframe.F{
		Colname:    ColRideLength,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			v := el.Float()
			return v > 0 && v <= MaxRideMinutes
		},
	})

	dropped := before - out.Nrow()
	if dropped > 0 {
		p.logWarning(fmt.Sprintf("有效性过滤丢弃 %d 行(总计 %d 行)", dropped, before))
	} else {
		p.logInfo(fmt.Sprintf("有效性过滤完成，%d 行全部保留", before))
	}
	return out
}
