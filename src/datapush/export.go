package datapush

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ShiftInsight/src/processor"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// excel 工作表名最长31个字符
const maxSheetName = 31

// WriteCSV 写出带表头、不带行号的 CSV
func WriteCSV(path string, df dataframe.DataFrame) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	if err := df.WriteCSV(f, dataframe.WriteHeader(true)); err != nil {
		f.Close()
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return f.Close()
}

// WriteGroupTable 把分组结果写到 dir/table.File，返回写出的路径
func WriteGroupTable(dir string, table processor.GroupTable) (string, error) {
	df, err := table.DataFrame()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, table.File)
	if err := WriteCSV(path, df); err != nil {
		return "", err
	}
	return path, nil
}

// SheetName 由输出文件名得到工作表名，如 charge.csv -> charge
func SheetName(table processor.GroupTable) string {
	name := strings.TrimSuffix(table.File, filepath.Ext(table.File))
	if name == "" {
		name = table.Field
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// SaveWorkbook 每个分组表写成一个工作表，保存为一个 xlsx
func SaveWorkbook(path string, tables []processor.GroupTable) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	for i, table := range tables {
		df, err := table.DataFrame()
		if err != nil {
			return err
		}

		sheet := SheetName(table)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("创建工作表 %s 失败: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, sheet, df); err != nil {
			return err
		}
	}

	if len(tables) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("删除默认工作表失败: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	// 写入列名
	colNames := df.Names()
	for i, name := range colNames {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	// 写入数据
	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, colName := range colNames {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			val := df.Col(colName).Val(rowIdx)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("写入 %s!%s 失败: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
