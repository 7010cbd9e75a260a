// writer.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// CleanedFileName 输出文件名，period形如 2019q1_2020q1
func CleanedFileName(period string) string {
	return fmt.Sprintf("cyclistic_cleaned_%s.csv", period)
}

// WriteCleanedCSV 把清洗后的表写成带表头的CSV
// 同名文件直接覆盖
func WriteCleanedCSV(df dataframe.DataFrame, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer f.Close()

	if err := df.WriteCSV(f, dataframe.WriteHeader(true)); err != nil {
		return fmt.Errorf("写CSV失败: %w", err)
	}
	return nil
}

// SummarySheet 汇总工作簿里的一个工作表
type SummarySheet struct {
	Name string
	DF   dataframe.DataFrame
}

// SaveSummaryWorkbook 把各分组的汇总表导出成一个Excel工作簿
// 图表层直接拿这个工作簿去做可视化
func SaveSummaryWorkbook(path string, sheets []SummarySheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("没有可导出的汇总表")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		sheetName := sheet.Name
		if i == 0 {
			// 复用默认工作表
			if err := f.SetSheetName("Sheet1", sheetName); err != nil {
				return fmt.Errorf("重命名工作表失败: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheetName); err != nil {
				return fmt.Errorf("创建工作表 %s 失败: %w", sheetName, err)
			}
		}

		df := sheet.DF

		// 写入列名
		colNames := df.Names()
		for c, name := range colNames {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			f.SetCellValue(sheetName, cell, name)
		}

		// 写入数据
		for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
			for colIdx, colName := range colNames {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				val := df.Col(colName).Val(rowIdx)
				f.SetCellValue(sheetName, cell, val)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
