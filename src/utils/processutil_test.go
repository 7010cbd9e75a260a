package utils

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func TestParseTimeString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2019-01-02 08:00:00", "2019-01-02 08:00:00"},
		{"2019-01-02 08:00", "2019-01-02 08:00:00"},
		{"2019/01/02 08:00:00", "2019-01-02 08:00:00"},
		{"1/2/2019 8:00:00", "2019-01-02 08:00:00"},
	}
	for _, c := range cases {
		got, err := ParseTimeString(c.in)
		if err != nil {
			t.Errorf("ParseTimeString(%q) 失败: %v", c.in, err)
			continue
		}
		if got.Format("2006-01-02 15:04:05") != c.want {
			t.Errorf("ParseTimeString(%q) = %v, want %s", c.in, got, c.want)
		}
	}

	if _, err := ParseTimeString("not-a-time"); err == nil {
		t.Error("无法解析的时间应返回错误")
	}
}

func TestNormalizeTime(t *testing.T) {
	if got := NormalizeTime("1/2/2019 8:00:00"); got != "2019-01-02 08:00:00" {
		t.Errorf("NormalizeTime错误: %q", got)
	}
	// 解析失败原样返回
	if got := NormalizeTime("garbage"); got != "garbage" {
		t.Errorf("解析失败应原样返回: %q", got)
	}
}

func TestHasColumn(t *testing.T) {
	df := dataframe.New(series.New([]string{"a"}, series.String, "ride_id"))
	if !HasColumn(df, "ride_id") {
		t.Error("应能找到ride_id列")
	}
	if HasColumn(df, "trip_id") {
		t.Error("不存在的列不应找到")
	}
}

func TestContains(t *testing.T) {
	if !Contains([]string{"Saturday", "Sunday"}, "Sunday") {
		t.Error("Contains应命中")
	}
	if Contains([]int{1, 2}, 3) {
		t.Error("Contains不应命中")
	}
}
