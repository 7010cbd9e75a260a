package processor

import (
	"testing"
)

func TestFilterValidBounds(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)

	df := loadStringRecords([][]string{
		{"ride_id", "started_at", "ended_at", "member_casual"},
		{"ok5min", "2019-01-02 08:00:00", "2019-01-02 08:05:00", "Subscriber"},
		{"exact1day", "2019-01-02 08:00:00", "2019-01-03 08:00:00", "member"},
		{"zero", "2019-01-02 08:00:00", "2019-01-02 08:00:00", "member"},
		{"negative", "2019-01-02 08:00:00", "2019-01-02 07:00:00", "member"},
		{"toolong", "2019-01-01 10:00:00", "2019-01-02 19:20:00", "casual"},
		{"missing", "", "2019-01-02 08:00:00", "member"},
	})

	derived, err := p.Derive(df)
	if err != nil {
		t.Fatal(err)
	}

	out := p.FilterValid(derived)
	if out.Nrow() != 2 {
		t.Fatalf("只应保留2行，实际 %d", out.Nrow())
	}

	ids := out.Col("ride_id").Records()
	if ids[0] != "ok5min" || ids[1] != "exact1day" {
		t.Errorf("保留的行不对: %v", ids)
	}

	// 保留行全部满足 0 < ride_length <= 1440
	for i := 0; i < out.Nrow(); i++ {
		v := out.Col("ride_length").Elem(i).Float()
		if !(v > 0 && v <= MaxRideMinutes) {
			t.Errorf("第%d行时长越界: %v", i, v)
		}
	}
}

// 规格里的端到端例子：Subscriber骑5分钟保留为Annual，casual骑2000分钟丢弃
func TestPipelineRunExample(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)

	legacy := loadStringRecords([][]string{
		{"trip_id", "start_time", "end_time", "usertype"},
		{"501", "2019-01-02 08:00:00", "2019-01-02 08:05:00", "Subscriber"},
	})
	modern := loadStringRecords([][]string{
		{"ride_id", "started_at", "ended_at", "member_casual"},
		{"E5F6", "2020-02-01 10:00:00", "2020-02-02 19:20:00", "casual"},
	})

	cleaned, err := p.Run(legacy, modern)
	if err != nil {
		t.Fatal(err)
	}

	if cleaned.Nrow() != 1 {
		t.Fatalf("应只剩1行，实际 %d", cleaned.Nrow())
	}
	if got := cleaned.Col("ride_id").Records()[0]; got != "501" {
		t.Errorf("保留的应是501，得到 %q", got)
	}
	if got := cleaned.Col("user_type_group").Records()[0]; got != "Annual" {
		t.Errorf("Subscriber应归为Annual，得到 %q", got)
	}
	if got := cleaned.Col("ride_length").Elem(0).Float(); got != 5 {
		t.Errorf("ride_length应为5，得到 %v", got)
	}

	// 输出列顺序与规范schema一致
	names := cleaned.Names()
	if len(names) != len(CanonicalColumns) {
		t.Fatalf("输出列数应为 %d，实际 %d", len(CanonicalColumns), len(names))
	}
	for i, name := range CanonicalColumns {
		if names[i] != name {
			t.Errorf("第%d列应为 %s，实际 %s", i, name, names[i])
		}
	}
}

// 行数守恒：输出行数 = 合并行数 - 被过滤行数
func TestPipelineRowCountInvariant(t *testing.T) {
	p := NewPipeline(testDataConfig(), nil)

	unified, err := p.Harmonize(legacyFrame(), modernFrame())
	if err != nil {
		t.Fatal(err)
	}

	derived, err := p.Derive(unified)
	if err != nil {
		t.Fatal(err)
	}
	filtered := p.FilterValid(derived)
	droppedByFilter := derived.Nrow() - filtered.Nrow()

	cleaned, err := p.Run(legacyFrame(), modernFrame())
	if err != nil {
		t.Fatal(err)
	}

	if cleaned.Nrow() != unified.Nrow()-droppedByFilter {
		t.Errorf("行数守恒被破坏: 输出 %d, 合并 %d, 过滤 %d",
			cleaned.Nrow(), unified.Nrow(), droppedByFilter)
	}
}
