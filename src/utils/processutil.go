package utils

import (
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// 骑行数据里常见的几种时间写法，按顺序尝试
var timeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// ParseTime 解析单元格里的时间字符串
// 空值或NA返回零值时间，不算错误
func ParseTime(s series.Element) (time.Time, error) {
	str := s.String()
	if str == "" || s.IsNA() {
		return time.Time{}, nil
	}
	return ParseTimeString(str)
}

func ParseTimeString(str string) (time.Time, error) {
	var lastErr error
	for _, format := range timeFormats {
		t, err := time.Parse(format, str)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr // 返回零值时间表示解析失败
}

// NormalizeTime 将任意受支持格式的时间字符串统一成标准格式
// 解析失败时原样返回，后续派生步骤按缺失值处理
func NormalizeTime(str string) string {
	t, err := ParseTimeString(str)
	if err != nil || t.IsZero() {
		return str
	}
	return t.Format("2006-01-02 15:04:05")
}
