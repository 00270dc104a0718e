package processor

import (
	"fmt"
	"strings"

	"ShiftInsight/src/config"
	"ShiftInsight/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ShiftIDSet 提取班次表的 ID 列
func ShiftIDSet(shift dataframe.DataFrame, idCol string) (map[string]struct{}, error) {
	if !utils.HasColumn(shift, idCol) {
		return nil, fmt.Errorf("%w: shift.%s", ErrMissingColumn, idCol)
	}
	ids := make(map[string]struct{}, shift.Nrow())
	for _, id := range shift.Col(idCol).Records() {
		ids[strings.TrimSpace(id)] = struct{}{}
	}
	return ids, nil
}

// FilterByShift 只保留 Shift ID 在班次集合中的行，孤立记录直接丢弃
func FilterByShift(df dataframe.DataFrame, shiftIDs map[string]struct{}) (dataframe.DataFrame, error) {
	if !utils.HasColumn(df, ColShiftID) {
		return df, fmt.Errorf("%w: %s", ErrMissingColumn, ColShiftID)
	}
	if df.Nrow() == 0 {
		return df, nil
	}

	filtered := df.Filter(
		dataframe.F{
			Colname:    ColShiftID,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				if utils.IsNull(el) {
					return false
				}
				_, ok := shiftIDs[strings.TrimSpace(el.String())]
				return ok
			},
		},
	)
	if filtered.Err != nil {
		return df, fmt.Errorf("按班次过滤失败: %w", filtered.Err)
	}
	return filtered, nil
}

// ApplyHeaderAliases 按数据配置把源列名改成标准列名
func ApplyHeaderAliases(df dataframe.DataFrame, dc *config.DataConfig) (dataframe.DataFrame, error) {
	for _, name := range df.Names() {
		target := dc.GetHeader(name)
		if target == name {
			continue
		}
		if utils.HasColumn(df, target) {
			return df, fmt.Errorf("列名别名冲突: %s -> %s 已存在", name, target)
		}
		df = df.Rename(target, name)
		if df.Err != nil {
			return df, fmt.Errorf("列重命名失败: %w", df.Err)
		}
	}
	return df, nil
}
