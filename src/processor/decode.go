package processor

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ShiftInsight/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn 期望的列不存在
var ErrMissingColumn = errors.New("缺少列")

// frameReader 按列名从 DataFrame 读取单元格，列在构造时检查一次
type frameReader struct {
	table string
	cols  map[string]series.Series
}

func newFrameReader(df dataframe.DataFrame, table string, required, optional []string) (*frameReader, error) {
	r := &frameReader{table: table, cols: make(map[string]series.Series)}
	for _, col := range required {
		if !utils.HasColumn(df, col) {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingColumn, table, col)
		}
		r.cols[col] = df.Col(col)
	}
	for _, col := range optional {
		if utils.HasColumn(df, col) {
			r.cols[col] = df.Col(col)
		}
	}
	return r, nil
}

func (r *frameReader) str(col string, i int) string {
	s, ok := r.cols[col]
	if !ok {
		return ""
	}
	el := s.Elem(i)
	if utils.IsNull(el) {
		return ""
	}
	return strings.TrimSpace(el.String())
}

func (r *frameReader) timestamp(col string, i int) (time.Time, error) {
	t, err := utils.ParseTime(r.str(col, i))
	if err != nil {
		var pe *utils.ParseError
		if errors.As(err, &pe) {
			return t, &utils.ParseError{Column: col, Row: i, Value: pe.Value}
		}
		return t, err
	}
	return t, nil
}

func (r *frameReader) float(col string, i int) (float64, error) {
	s, ok := r.cols[col]
	if !ok {
		return math.NaN(), nil
	}
	if s.Type() == series.Float {
		return s.Elem(i).Float(), nil
	}
	v, err := utils.ParseFloat(r.str(col, i))
	if err != nil {
		return v, fmt.Errorf("%s.%s 第 %d 行不是数值: %w", r.table, col, i, err)
	}
	return v, nil
}

// DecodeShifts 把归一化、重命名后的班次表转为结构体
func DecodeShifts(df dataframe.DataFrame) ([]Shift, error) {
	r, err := newFrameReader(df, "shift",
		[]string{ColShiftID, ColStart, ColShiftCreatedAt, ColShiftLeadTime},
		[]string{ColEnd, ColCharge, ColAgentReq, ColShiftType, ColFacilityID})
	if err != nil {
		return nil, err
	}

	shifts := make([]Shift, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		s := Shift{
			ID:         r.str(ColShiftID, i),
			Charge:     r.str(ColCharge, i),
			AgentReq:   r.str(ColAgentReq, i),
			ShiftType:  r.str(ColShiftType, i),
			FacilityID: r.str(ColFacilityID, i),
		}
		if s.Start, err = r.timestamp(ColStart, i); err != nil {
			return nil, err
		}
		if s.End, err = r.timestamp(ColEnd, i); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = r.timestamp(ColShiftCreatedAt, i); err != nil {
			return nil, err
		}
		if s.LeadTime, err = r.float(ColShiftLeadTime, i); err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	return shifts, nil
}

// DecodeBookings 把归一化、重命名后的预订表转为结构体
func DecodeBookings(df dataframe.DataFrame) ([]Booking, error) {
	r, err := newFrameReader(df, "booking",
		[]string{ColBookingID, ColShiftID, ColWorkerID, ColBookingCreatedAt},
		[]string{ColBookingAction, ColBookingLeadTime, ColFacilityID})
	if err != nil {
		return nil, err
	}

	bookings := make([]Booking, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		b := Booking{
			ID:         r.str(ColBookingID, i),
			ShiftID:    r.str(ColShiftID, i),
			WorkerID:   r.str(ColWorkerID, i),
			FacilityID: r.str(ColFacilityID, i),
			Action:     r.str(ColBookingAction, i),
		}
		if b.CreatedAt, err = r.timestamp(ColBookingCreatedAt, i); err != nil {
			return nil, err
		}
		if b.LeadTime, err = r.float(ColBookingLeadTime, i); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// DecodeCancellations 把归一化、重命名后的取消表转为结构体
// Lead Time 为空时用 Shift Start Logs - Created At 补齐
func DecodeCancellations(df dataframe.DataFrame) ([]Cancellation, error) {
	r, err := newFrameReader(df, "cancel",
		[]string{ColCancelID, ColShiftID, ColWorkerID, ColCancelCreatedAt, ColCancelAction, ColCancelLeadTime},
		[]string{ColShiftStartLogs, ColFacilityID})
	if err != nil {
		return nil, err
	}

	cancels := make([]Cancellation, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		c := Cancellation{
			ID:         r.str(ColCancelID, i),
			ShiftID:    r.str(ColShiftID, i),
			WorkerID:   r.str(ColWorkerID, i),
			FacilityID: r.str(ColFacilityID, i),
			Action:     r.str(ColCancelAction, i),
		}
		if c.CreatedAt, err = r.timestamp(ColCancelCreatedAt, i); err != nil {
			return nil, err
		}
		if c.ShiftStart, err = r.timestamp(ColShiftStartLogs, i); err != nil {
			return nil, err
		}
		if c.LeadTime, err = r.float(ColCancelLeadTime, i); err != nil {
			return nil, err
		}
		if math.IsNaN(c.LeadTime) {
			c.LeadTime = utils.HoursBetween(c.CreatedAt, c.ShiftStart)
		}
		cancels = append(cancels, c)
	}
	return cancels, nil
}
