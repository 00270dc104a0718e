package processor

import (
	"fmt"

	"ShiftInsight/src/utils"

	"github.com/go-gota/gota/dataframe"
)

// ColumnChange 一次列重命名 [旧名, 新名]
type ColumnChange [2]string

// 每张表重命名规则，join 之后列名互不冲突
var (
	ShiftChange = []ColumnChange{
		{ColID, ColShiftID},
		{ColCreatedAt, ColShiftCreatedAt},
	}

	BookingChange = []ColumnChange{
		{ColID, ColBookingID},
		{ColCreatedAt, ColBookingCreatedAt},
		{ColAction, ColBookingAction},
		{ColLeadTime, ColBookingLeadTime},
	}

	CancelChange = []ColumnChange{
		{ColID, ColCancelID},
		{ColCreatedAt, ColCancelCreatedAt},
		{ColAction, ColCancelAction},
		{ColLeadTime, ColCancelLeadTime},
	}
)

// 需要转换为时间的列(重命名之前)
var (
	BookingTimeColumns = []string{ColCreatedAt}
	CancelTimeColumns  = []string{ColCreatedAt, ColShiftStartLogs}
	ShiftTimeColumns   = []string{ColStart, ColEnd, ColCreatedAt}
)

// ConvertDatetime 把列表中的列统一转换为标准时间格式
// 可选列(如 End)缺失时跳过，其余缺失报错
func ConvertDatetime(df dataframe.DataFrame, columns ...string) (dataframe.DataFrame, error) {
	var err error
	for _, col := range columns {
		if !utils.HasColumn(df, col) {
			if isOptional(col) {
				continue
			}
			return df, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		df, err = utils.NormalizeTimeColumn(df, col)
		if err != nil {
			return df, err
		}
	}
	return df, nil
}

// RenameColumns 按规则重命名，源列不存在时报错
func RenameColumns(df dataframe.DataFrame, changes []ColumnChange) (dataframe.DataFrame, error) {
	for _, c := range changes {
		if !utils.HasColumn(df, c[0]) {
			return df, fmt.Errorf("%w: 重命名 %s -> %s", ErrMissingColumn, c[0], c[1])
		}
		df = df.Rename(c[1], c[0])
		if df.Err != nil {
			return df, fmt.Errorf("列重命名失败: %w", df.Err)
		}
	}
	return df, nil
}

// AddShiftLeadTime 新增 Shift Lead Time = (Start - Created At) 小时
func AddShiftLeadTime(shift dataframe.DataFrame) (dataframe.DataFrame, error) {
	return utils.SubSeriesHours(shift, ColStart, ColCreatedAt, ColShiftLeadTime)
}

func isOptional(col string) bool {
	return col == ColEnd
}
