// pipeline.go
package processor

import (
	"fmt"

	"CyclisticAnalysis/src/config"
	"CyclisticAnalysis/src/storage"

	"github.com/go-gota/gota/dataframe"
)

// Pipeline 串起一次完整的清洗流程：
// 合并schema -> 计算派生列 -> 有效性过滤 -> 按规范列序输出
// 每个阶段都接收并返回新的DataFrame，不在原表上就地改
type Pipeline struct {
	Dcfg   *config.DataConfig
	Logger *storage.Logger
}

func NewPipeline(dcfg *config.DataConfig, logger *storage.Logger) *Pipeline {
	return &Pipeline{
		Dcfg:   dcfg,
		Logger: logger,
	}
}

// Run 对若干源表执行一次完整清洗，返回规范schema的干净表
func (p *Pipeline) Run(frames ...dataframe.DataFrame) (dataframe.DataFrame, error) {
	unified, err := p.Harmonize(frames...)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	derived, err := p.Derive(unified)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	cleaned := p.FilterValid(derived)

	// 按规范列序重排，顺带扔掉中途可能混入的多余列
	cleaned = cleaned.Select(CanonicalColumns)
	if cleaned.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("规范列选取失败: %w", cleaned.Err)
	}

	p.logInfo(fmt.Sprintf("清洗完成，输出 %d 行 %d 列", cleaned.Nrow(), cleaned.Ncol()))
	return cleaned, nil
}

// 测试里经常不带logger跑单个阶段，这里做个保护
func (p *Pipeline) logInfo(msg string) {
	if p.Logger != nil {
		p.Logger.Info(msg)
	}
}

func (p *Pipeline) logWarning(msg string) {
	if p.Logger != nil {
		p.Logger.Warning(msg)
	}
}
