// reader.go
package file

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ShiftInsight/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadTable 按扩展名读取表格文件，所有列均按字符串读取
// 参数:
//
//	filePath: .csv 或 .xlsx 文件
//	sheetName: xlsx工作表名，为空时取第一个工作表
//	encoding: csv文件编码(utf-8/gbk/gb2312)，xlsx忽略
func ReadTable(filePath, sheetName, encoding string) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		return ReadXLSX(filePath, sheetName)
	default:
		f, err := os.Open(filePath)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("打开文件失败: %w", err)
		}
		defer f.Close()

		df, err := ReadCSV(f, encoding)
		if err != nil {
			return df, fmt.Errorf("读取 %s 失败: %w", filePath, err)
		}
		return df, nil
	}
}

// ReadCSV 读取带表头的逗号分隔数据，只有表头时返回0行的表
func ReadCSV(r io.Reader, encoding string) (dataframe.DataFrame, error) {
	decoded, err := charsetReader(encoding, r)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	cr := csv.NewReader(decoded)
	records, err := cr.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("解析csv失败: %w", err)
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("解析csv失败: 没有表头")
	}
	if len(records) == 1 {
		return emptyFrame(records[0])
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, fmt.Errorf("解析csv失败: %w", df.Err)
	}
	return trimHeaders(df), nil
}

func emptyFrame(headers []string) (dataframe.DataFrame, error) {
	cols := make([]series.Series, len(headers))
	for i, h := range headers {
		cols[i] = series.New([]string{}, series.String, strings.TrimSpace(h))
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return df, fmt.Errorf("解析csv失败: %w", df.Err)
	}
	return df, nil
}

// ReadXLSX 读取xlsx工作表，第一行为表头
func ReadXLSX(filePath, sheetName string) (dataframe.DataFrame, error) {
	// 1. 使用tealeg/xlsx打开Excel文件
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx open file false: %w", err)
	}

	// 2. 获取工作表
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表: %s", filePath)
	}
	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("工作表 %s 不存在: %s", sheetName, filePath)
		}
		sheet = s
	}

	// 3. 转换为Gota DataFrame
	return convertSheetToDataFrame(sheet, xlFile.Date1904)
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
// 日期格式的单元格存的是序列号，这里转成 utils.TimeLayout 文本
func convertSheetToDataFrame(sheet *xlsx.Sheet, date1904 bool) (dataframe.DataFrame, error) {
	if len(sheet.Rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("工作表 %s 没有表头", sheet.Name)
	}

	// 获取列名(第一行是标题行)
	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, strings.TrimSpace(cell.Value))
	}

	// 准备数据列
	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	// 填充数据(从第二行开始)，短行补空串
	for _, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		for i := range headers {
			value := ""
			if i < len(row.Cells) && row.Cells[i] != nil {
				value = cellValue(row.Cells[i], date1904)
			}
			columns[i] = append(columns[i], value)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	if df.Err != nil {
		return df, fmt.Errorf("转换为dataframe失败: %w", df.Err)
	}
	return df, nil
}

func cellValue(cell *xlsx.Cell, date1904 bool) string {
	if !cell.IsTime() {
		return cell.Value
	}
	t, err := cell.GetTime(date1904)
	if err != nil {
		// 日期格式里写的是文本，交给后续的时间解析
		return cell.Value
	}
	return utils.FormatTime(t.Round(time.Second))
}

// charsetReader 字符集转换器
// 去掉表格软件导出时带的UTF-8 BOM，支持GBK/GB2312自动转UTF-8
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(input, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "gbk", "gb2312":
		return transform.NewReader(input, simplifiedchinese.GBK.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("不支持的编码: %s", charset)
	}
}

// trimHeaders 去掉列名首尾空白
func trimHeaders(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		trimmed := strings.TrimSpace(name)
		if trimmed != name {
			df = df.Rename(trimmed, name)
		}
	}
	return df
}

// ReadCSVString 测试和小数据量场景的便捷方法
func ReadCSVString(data string) (dataframe.DataFrame, error) {
	return ReadCSV(bytes.NewBufferString(data), "utf-8")
}
