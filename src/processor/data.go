// data.go
package processor

import (
	"fmt"
	"time"

	"ShiftInsight/src/config"
	"ShiftInsight/src/datasource/file"
	"ShiftInsight/src/storage"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"
)

// DataProcessor 串起读取、清洗、连接、统计各阶段
type DataProcessor struct {
	cfg    *config.Config
	dcfg   *config.DataConfig
	logger *storage.Logger

	bookingDF dataframe.DataFrame
	cancelDF  dataframe.DataFrame
	shiftDF   dataframe.DataFrame

	Shifts   []Shift
	Bookings []Booking
	Cancels  []Cancellation

	First         []ShiftFirstBooking
	BookingCancel []BookingCancel
	Details       []BookingDetail
}

func NewDataProcessor(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) *DataProcessor {
	if logger == nil {
		logger = storage.NewNopLogger()
	}
	if dcfg == nil {
		dcfg = config.DefaultDataConfig()
	}
	return &DataProcessor{cfg: cfg, dcfg: dcfg, logger: logger}
}

// Load 读取三张输入表
func (p *DataProcessor) Load() error {
	inputs := []struct {
		name string
		file string
		dst  *dataframe.DataFrame
	}{
		{"booking", p.cfg.Input.Booking, &p.bookingDF},
		{"cancel", p.cfg.Input.Cancel, &p.cancelDF},
		{"shift", p.cfg.Input.Shift, &p.shiftDF},
	}

	for _, in := range inputs {
		path := p.cfg.InputPath(in.file)
		df, err := file.ReadTable(path, p.cfg.SheetName, p.cfg.Encoding)
		if err != nil {
			return fmt.Errorf("读取 %s 表失败: %w", in.name, err)
		}
		*in.dst = df
		p.logger.Info("读取输入表",
			zap.String("table", in.name),
			zap.String("path", path),
			zap.Int("rows", df.Nrow()))
	}
	return nil
}

// SetFrames 直接设置输入表，跳过文件读取
func (p *DataProcessor) SetFrames(booking, cancel, shift dataframe.DataFrame) {
	p.bookingDF = booking
	p.cancelDF = cancel
	p.shiftDF = shift
}

// CleanData 过滤孤立记录、归一化时间、计算班次提前量、重命名并解码为结构体
func (p *DataProcessor) CleanData() error {
	var err error
	tables := []*dataframe.DataFrame{&p.bookingDF, &p.cancelDF, &p.shiftDF}
	for _, t := range tables {
		if *t, err = ApplyHeaderAliases(*t, p.dcfg); err != nil {
			return err
		}
	}

	ids, err := ShiftIDSet(p.shiftDF, ColID)
	if err != nil {
		return err
	}

	before := p.bookingDF.Nrow()
	if p.bookingDF, err = FilterByShift(p.bookingDF, ids); err != nil {
		return fmt.Errorf("booking: %w", err)
	}
	p.logDropped("booking", before, p.bookingDF.Nrow())

	before = p.cancelDF.Nrow()
	if p.cancelDF, err = FilterByShift(p.cancelDF, ids); err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	p.logDropped("cancel", before, p.cancelDF.Nrow())

	if p.bookingDF, err = ConvertDatetime(p.bookingDF, BookingTimeColumns...); err != nil {
		return fmt.Errorf("booking: %w", err)
	}
	if p.cancelDF, err = ConvertDatetime(p.cancelDF, CancelTimeColumns...); err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	if p.shiftDF, err = ConvertDatetime(p.shiftDF, ShiftTimeColumns...); err != nil {
		return fmt.Errorf("shift: %w", err)
	}

	if p.shiftDF, err = AddShiftLeadTime(p.shiftDF); err != nil {
		return fmt.Errorf("shift: %w", err)
	}

	if p.shiftDF, err = RenameColumns(p.shiftDF, ShiftChange); err != nil {
		return fmt.Errorf("shift: %w", err)
	}
	if p.bookingDF, err = RenameColumns(p.bookingDF, BookingChange); err != nil {
		return fmt.Errorf("booking: %w", err)
	}
	if p.cancelDF, err = RenameColumns(p.cancelDF, CancelChange); err != nil {
		return fmt.Errorf("cancel: %w", err)
	}

	if p.Shifts, err = DecodeShifts(p.shiftDF); err != nil {
		return err
	}
	if p.Bookings, err = DecodeBookings(p.bookingDF); err != nil {
		return err
	}
	if p.Cancels, err = DecodeCancellations(p.cancelDF); err != nil {
		return err
	}
	return nil
}

func (p *DataProcessor) logDropped(table string, before, after int) {
	if before == after {
		return
	}
	p.logger.Info(fmt.Sprintf("%s 表丢弃 %d 条不在班次表中的记录", table, before-after),
		zap.String("table", table))
}

// Join 三次连接: 班次-首次预订、预订-取消、预订-班次属性
func (p *DataProcessor) Join() error {
	res, err := DedupCancellations(p.Cancels, p.cfg.CancelDedup)
	if err != nil {
		return err
	}
	switch {
	case res.Dropped > 0:
		p.logger.Warning("同一班次同一员工存在多条取消记录，只保留最早一条",
			zap.Int("dropped", res.Dropped),
			zap.Int("keys", res.Duplicated))
	case res.Duplicated > 0:
		p.logger.Warning("同一班次同一员工存在多条取消记录，全部保留",
			zap.Int("keys", res.Duplicated))
	}

	p.First = JoinShiftFirstBooking(p.Shifts, FirstBookings(p.Bookings))
	p.BookingCancel = JoinBookingCancel(p.Bookings, res.Cancels)
	p.Details = JoinBookingDetail(p.BookingCancel, p.Shifts)

	p.logger.Debug("连接完成",
		zap.Int("booking_first", len(p.First)),
		zap.Int("booking_cancel", len(p.BookingCancel)),
		zap.Int("booking_detail", len(p.Details)))
	return nil
}

// CalculateMetrics 按全部维度统计取消情况
func (p *DataProcessor) CalculateMetrics() []GroupTable {
	rules := RulesFromConfig(p.dcfg)
	dims := Dimensions()
	tables := make([]GroupTable, 0, len(dims))
	for _, dim := range dims {
		t := CancelGroupBy(p.Details, dim, rules)
		p.logger.Debug("分组统计", zap.String("field", dim.Field), zap.Int("groups", len(t.Rows)))
		tables = append(tables, t)
	}
	return tables
}

// Run 依次执行 Load, CleanData, Join, CalculateMetrics
func (p *DataProcessor) Run() ([]GroupTable, error) {
	t1 := time.Now()
	if err := p.Load(); err != nil {
		return nil, err
	}
	tables, err := p.Process()
	if err != nil {
		return nil, err
	}
	p.logger.Info(fmt.Sprintf("数据处理时间：%v", time.Since(t1)))
	return tables, nil
}

// Process 对已设置的输入表执行清洗、连接和统计
func (p *DataProcessor) Process() ([]GroupTable, error) {
	if err := p.CleanData(); err != nil {
		return nil, err
	}
	if err := p.Join(); err != nil {
		return nil, err
	}
	return p.CalculateMetrics(), nil
}
