package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

func sampleDF() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"Annual", "Casual"}, series.String, "user_type_group"),
		series.New([]int{3, 2}, series.Int, "num_rides"),
		series.New([]float64{20, 50}, series.Float, "avg_ride_length"),
	)
}

func TestCleanedFileName(t *testing.T) {
	if got := CleanedFileName("2019q1_2020q1"); got != "cyclistic_cleaned_2019q1_2020q1.csv" {
		t.Errorf("文件名错误: %s", got)
	}
}

func TestWriteCleanedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned.csv")

	if err := WriteCleanedCSV(sampleDF(), path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("应有表头加2行数据，实际 %d 行", len(lines))
	}
	if lines[0] != "user_type_group,num_rides,avg_ride_length" {
		t.Errorf("表头错误: %s", lines[0])
	}

	// 覆盖写入不报错
	if err := WriteCleanedCSV(sampleDF(), path); err != nil {
		t.Fatal(err)
	}
}

func TestSaveSummaryWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	sheets := []SummarySheet{
		{Name: "按用户类型", DF: sampleDF()},
		{Name: "按星期", DF: sampleDF()},
	}
	if err := SaveSummaryWorkbook(path, sheets); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetCellValue("按用户类型", "A2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Annual" {
		t.Errorf("A2单元格应为Annual，实际 %q", got)
	}

	if len(f.GetSheetList()) != 2 {
		t.Errorf("工作簿应有2个工作表，实际 %v", f.GetSheetList())
	}
}

func TestSaveSummaryWorkbookEmpty(t *testing.T) {
	if err := SaveSummaryWorkbook(filepath.Join(t.TempDir(), "x.xlsx"), nil); err == nil {
		t.Fatal("空汇总应报错")
	}
}
