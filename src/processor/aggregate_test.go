package processor

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func summaryFixture() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{
			"Annual", "Annual", "Annual", "Casual", "Casual",
		}, series.String, ColUserTypeGroup),
		series.New([]string{
			"Monday", "Saturday", "Monday", "Sunday", "Wednesday",
		}, series.String, ColDayOfWeek),
		series.New([]string{
			"Weekday", "Weekend", "Weekday", "Weekend", "Weekday",
		}, series.String, ColDayType),
		series.New([]float64{10, 20, 30, 40, 60}, series.Float, ColRideLength),
	)
}

func TestSummarizeSingleKey(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)

	summaries, err := p.Summarize(summaryFixture(), ColUserTypeGroup)
	if err != nil {
		t.Fatal(err)
	}

	if len(summaries) != 2 {
		t.Fatalf("应有2个分组，实际 %d", len(summaries))
	}

	// 升序：Annual在前
	if summaries[0].Keys[ColUserTypeGroup] != "Annual" {
		t.Errorf("第一组应是Annual，得到 %v", summaries[0].Keys)
	}
	if summaries[0].NumRides != 3 {
		t.Errorf("Annual组应有3次骑行，实际 %d", summaries[0].NumRides)
	}
	if math.Abs(summaries[0].AvgRideLength-20) > 1e-9 {
		t.Errorf("Annual组平均时长应为20，实际 %v", summaries[0].AvgRideLength)
	}
	if summaries[1].NumRides != 2 || math.Abs(summaries[1].AvgRideLength-50) > 1e-9 {
		t.Errorf("Casual组汇总错误: %+v", summaries[1])
	}

	// 各组次数之和等于总行数
	total := 0
	for _, s := range summaries {
		total += s.NumRides
	}
	if total != summaryFixture().Nrow() {
		t.Errorf("分组次数之和 %d 不等于总行数 %d", total, summaryFixture().Nrow())
	}
}

func TestSummarizeWeekdayOrder(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)

	summaries, err := p.Summarize(summaryFixture(), ColDayOfWeek)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Monday", "Wednesday", "Saturday", "Sunday"}
	if len(summaries) != len(want) {
		t.Fatalf("应有%d个分组，实际 %d", len(want), len(summaries))
	}
	for i, day := range want {
		if summaries[i].Keys[ColDayOfWeek] != day {
			t.Errorf("第%d组应是 %s，实际 %s", i, day, summaries[i].Keys[ColDayOfWeek])
		}
	}
}

func TestSummarizeTwoKeys(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)

	summaries, err := p.Summarize(summaryFixture(), ColUserTypeGroup, ColDayType)
	if err != nil {
		t.Fatal(err)
	}

	// Annual/Weekday, Annual/Weekend, Casual/Weekday, Casual/Weekend
	if len(summaries) != 4 {
		t.Fatalf("应有4个分组，实际 %d", len(summaries))
	}
	first := summaries[0]
	if first.Keys[ColUserTypeGroup] != "Annual" || first.Keys[ColDayType] != "Weekday" {
		t.Errorf("第一组应是Annual/Weekday: %+v", first.Keys)
	}
	if first.NumRides != 2 || math.Abs(first.AvgRideLength-20) > 1e-9 {
		t.Errorf("Annual/Weekday汇总错误: %+v", first)
	}
}

func TestSummarizeNoKey(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)
	if _, err := p.Summarize(summaryFixture()); err == nil {
		t.Fatal("没有分组列时应报错")
	}
}

func TestSummaryDataFrame(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)

	summaries, err := p.Summarize(summaryFixture(), ColUserTypeGroup)
	if err != nil {
		t.Fatal(err)
	}

	df := SummaryDataFrame(summaries, []string{ColUserTypeGroup})
	if df.Err != nil {
		t.Fatal(df.Err)
	}
	if df.Nrow() != 2 || df.Ncol() != 3 {
		t.Fatalf("汇总表应为2行3列，实际 %dx%d", df.Nrow(), df.Ncol())
	}
	if got := df.Col("num_rides").Records()[0]; got != "3" {
		t.Errorf("num_rides错误: %q", got)
	}
}
