package datapush

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"ShiftInsight/src/processor"

	_ "modernc.org/sqlite"
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SaveSQLite 每个分组表写成库中的一张表，表名同工作表名，重复运行会覆盖
// NaN 平均值写为 NULL
func SaveSQLite(path string, tables []processor.GroupTable) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("打开数据库 %s 失败: %w", path, err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	for _, t := range tables {
		if err := insertGroupTable(tx, t); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func insertGroupTable(tx *sql.Tx, t processor.GroupTable) error {
	name := quoteIdent(SheetName(t))
	cols := t.GroupColumns()

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}

	ddl := fmt.Sprintf(`CREATE TABLE %s (%s TEXT PRIMARY KEY, %s REAL, %s INTEGER, %s INTEGER, %s INTEGER, %s INTEGER, %s INTEGER, %s INTEGER)`,
		name, quoted[0], quoted[1], quoted[2], quoted[3], quoted[4], quoted[5], quoted[6], quoted[7])
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + name); err != nil {
		return fmt.Errorf("删除表 %s 失败: %w", name, err)
	}
	if _, err := tx.Exec(ddl); err != nil {
		return fmt.Errorf("建表 %s 失败: %w", name, err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		name, strings.Join(quoted, ", ")))
	if err != nil {
		return fmt.Errorf("准备插入 %s 失败: %w", name, err)
	}
	defer stmt.Close()

	for _, r := range t.Rows {
		var avg interface{}
		if !math.IsNaN(r.AvgCancelLeadTime) {
			avg = r.AvgCancelLeadTime
		}
		if _, err := stmt.Exec(r.Key, avg, r.CancelCount, r.BookingCount,
			r.CancelNoCall, r.CancelCallOff, r.Cancel24, r.CancelStandard); err != nil {
			return fmt.Errorf("写入 %s 行 %s 失败: %w", name, r.Key, err)
		}
	}
	return nil
}
