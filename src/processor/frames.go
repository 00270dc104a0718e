package processor

import (
	"fmt"

	"ShiftInsight/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 分组结果的输出列
const (
	ColAvgCancelLeadTime = "Avg Cancel Lead Time"
	ColCancelCount       = "Cancel Count"
	ColBookingCount      = "Booking Count"
	ColCancelNoCall      = "Cancel No Call"
	ColCancelCallOff     = "Cancel Call Off"
	ColCancel24          = "Cancel 24"
	ColCancelStandard    = "Cancel Standard"
)

// GroupColumns 输出表的列顺序
func (t GroupTable) GroupColumns() []string {
	return []string{
		t.Field, ColAvgCancelLeadTime, ColCancelCount, ColBookingCount,
		ColCancelNoCall, ColCancelCallOff, ColCancel24, ColCancelStandard,
	}
}

// DataFrame 转换为 gota DataFrame，平均值为 NaN 时输出空单元格
func (t GroupTable) DataFrame() (dataframe.DataFrame, error) {
	n := len(t.Rows)
	keys := make([]string, n)
	avg := make([]string, n)
	counts := make([][]int, 6)
	for c := range counts {
		counts[c] = make([]int, n)
	}

	for i, r := range t.Rows {
		keys[i] = r.Key
		avg[i] = utils.FormatFloat(r.AvgCancelLeadTime)
		counts[0][i] = r.CancelCount
		counts[1][i] = r.BookingCount
		counts[2][i] = r.CancelNoCall
		counts[3][i] = r.CancelCallOff
		counts[4][i] = r.Cancel24
		counts[5][i] = r.CancelStandard
	}

	cols := t.GroupColumns()
	list := []series.Series{
		series.New(keys, series.String, cols[0]),
		series.New(avg, series.String, cols[1]),
	}
	for c := range counts {
		list = append(list, series.New(counts[c], series.Int, cols[c+2]))
	}

	df := dataframe.New(list...)
	if df.Err != nil {
		return df, fmt.Errorf("生成 %s 表失败: %w", t.Field, df.Err)
	}
	return df, nil
}

// ShiftFirstBookingFrame 班次首次预订表(booking_first.csv)
func ShiftFirstBookingFrame(rows []ShiftFirstBooking) (dataframe.DataFrame, error) {
	columns := []string{
		ColShiftID, ColStart, ColEnd, ColShiftCreatedAt, ColCharge, ColAgentReq,
		ColShiftType, ColFacilityID, ColShiftLeadTime, ColBookingID, ColBookingLeadTime,
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.ID,
			utils.FormatTime(r.Start),
			utils.FormatTime(r.End),
			utils.FormatTime(r.CreatedAt),
			r.Charge,
			r.AgentReq,
			r.ShiftType,
			r.FacilityID,
			utils.FormatFloat(r.LeadTime),
			r.BookingID,
			utils.FormatFloat(r.BookingLeadTime),
		})
	}
	return stringFrame(columns, records, "booking_first")
}

// BookingCancelFrame 预订与取消连接表(booking_cancel.csv)
func BookingCancelFrame(rows []BookingCancel) (dataframe.DataFrame, error) {
	columns := []string{
		ColBookingID, ColShiftID, ColWorkerID, ColFacilityID, ColBookingCreatedAt,
		ColBookingAction, ColBookingLeadTime, ColCancelID, ColCancelCreatedAt,
		ColShiftStartLogs, ColCancelAction, ColCancelLeadTime,
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := []string{
			r.ID,
			r.ShiftID,
			r.WorkerID,
			r.FacilityID,
			utils.FormatTime(r.CreatedAt),
			r.Action,
			utils.FormatFloat(r.LeadTime),
			"", "", "", "", "",
		}
		if c := r.Cancel; c != nil {
			rec[7] = c.ID
			rec[8] = utils.FormatTime(c.CreatedAt)
			rec[9] = utils.FormatTime(c.ShiftStart)
			rec[10] = c.Action
			rec[11] = utils.FormatFloat(c.LeadTime)
		}
		records = append(records, rec)
	}
	return stringFrame(columns, records, "booking_cancel")
}

// stringFrame 按列构造字符串表，行数为0时也能生成只有表头的表
func stringFrame(columns []string, rows [][]string, name string) (dataframe.DataFrame, error) {
	list := make([]series.Series, len(columns))
	for c, col := range columns {
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = r[c]
		}
		list[c] = series.New(values, series.String, col)
	}
	df := dataframe.New(list...)
	if df.Err != nil {
		return df, fmt.Errorf("生成 %s 表失败: %w", name, df.Err)
	}
	return df, nil
}
