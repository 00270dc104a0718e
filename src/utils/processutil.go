package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jinzhu/now"
)

// TimeLayout 归一化后的时间格式
const TimeLayout = "2006-01-02 15:04:05"

// 混合格式的时间列依次尝试以下格式
var timeLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05 MST",
	"2006-01-02T15:04:05 MST",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06 15:04",
	"1/2/2006",
	"2006-01",
	"2006",
}

var (
	hasDatePart = regexp.MustCompile(`[0-9]{1,4}[-/][0-9]{1,2}`)
	looseParser = &now.Config{TimeLocation: time.UTC, TimeFormats: now.TimeFormats}
)

// ParseError 时间值无法按任何已知格式解析
type ParseError struct {
	Column string
	Row    int
	Value  string
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("无法解析时间 %q", e.Value)
	}
	return fmt.Sprintf("无法解析时间: 列 %q 第 %d 行 值 %q", e.Column, e.Row, e.Value)
}

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
	return Contains(df.Names(), name)
}

// IsNull 空字符串、NA都视为缺失
func IsNull(el series.Element) bool {
	if el.IsNA() {
		return true
	}
	return strings.TrimSpace(el.String()) == ""
}

// ParseTime 解析混合格式的时间字符串，结果统一为UTC
// 空字符串返回零值时间和nil。纯数字只按年份解析，xlsx的日期序列号在读取时已转换
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	// 1. 常见格式
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	// 2. 不补零等宽松格式
	if hasDatePart.MatchString(s) {
		if t, err := looseParser.Parse(s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, &ParseError{Value: s}
}

// FormatTime 零值时间输出为空字符串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// FormatFloat NaN输出为空字符串
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseFloat 空值返回NaN
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" || s == "NA" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// HoursBetween 两个时间相差的小时数(end - start)，任一为零值时返回NaN
func HoursBetween(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return math.NaN()
	}
	return end.Sub(start).Seconds() / 3600
}

// SubSeriesHours 计算 colEnd - colStart 的小时数，新增为 colOut 列
func SubSeriesHours(df dataframe.DataFrame, colEnd, colStart, colOut string) (dataframe.DataFrame, error) {
	if !HasColumn(df, colEnd) || !HasColumn(df, colStart) {
		return df, fmt.Errorf("计算 %s 失败: 缺少列 %s 或 %s", colOut, colEnd, colStart)
	}

	endCol := df.Col(colEnd)
	startCol := df.Col(colStart)

	// 预分配切片容量
	hours := make([]float64, 0, df.Nrow())

	for i := 0; i < df.Nrow(); i++ {
		endTime, err := ParseTime(cellString(endCol.Elem(i)))
		if err != nil {
			return df, withPosition(err, colEnd, i)
		}
		startTime, err := ParseTime(cellString(startCol.Elem(i)))
		if err != nil {
			return df, withPosition(err, colStart, i)
		}
		hours = append(hours, HoursBetween(startTime, endTime))
	}

	out := df.Mutate(series.New(hours, series.Float, colOut))
	if out.Err != nil {
		return df, fmt.Errorf("计算 %s 失败: %w", colOut, out.Err)
	}
	return out, nil
}

// NormalizeTimeColumn 把一列混合格式时间统一为 TimeLayout
func NormalizeTimeColumn(df dataframe.DataFrame, col string) (dataframe.DataFrame, error) {
	if !HasColumn(df, col) {
		return df, fmt.Errorf("时间列 %s 不存在", col)
	}

	src := df.Col(col)
	values := make([]string, src.Len())
	for i := 0; i < src.Len(); i++ {
		t, err := ParseTime(cellString(src.Elem(i)))
		if err != nil {
			return df, withPosition(err, col, i)
		}
		values[i] = FormatTime(t)
	}

	out := df.Mutate(series.New(values, series.String, col))
	if out.Err != nil {
		return df, fmt.Errorf("归一化时间列 %s 失败: %w", col, out.Err)
	}
	return out, nil
}

func cellString(el series.Element) string {
	if IsNull(el) {
		return ""
	}
	return el.String()
}

func withPosition(err error, col string, row int) error {
	if pe, ok := err.(*ParseError); ok {
		return &ParseError{Column: col, Row: row, Value: pe.Value}
	}
	return err
}
