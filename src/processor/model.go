package processor

import (
	"math"
	"time"
)

// 源文件中的列名
const (
	ColID             = "ID"
	ColShiftID        = "Shift ID"
	ColWorkerID       = "Worker ID"
	ColFacilityID     = "Facility ID"
	ColCreatedAt      = "Created At"
	ColAction         = "Action"
	ColLeadTime       = "Lead Time"
	ColShiftStartLogs = "Shift Start Logs"
	ColStart          = "Start"
	ColEnd            = "End"
	ColCharge         = "Charge"
	ColAgentReq       = "Agent Req"
	ColShiftType      = "Shift Type"
)

// 重命名后的列名，join之后不会冲突
const (
	ColShiftCreatedAt   = "Shift Created At"
	ColShiftLeadTime    = "Shift Lead Time"
	ColBookingID        = "Booking ID"
	ColBookingCreatedAt = "Booking Created At"
	ColBookingAction    = "Booking Action"
	ColBookingLeadTime  = "Booking Lead Time"
	ColCancelID         = "Cancel ID"
	ColCancelCreatedAt  = "Cancel Created At"
	ColCancelAction     = "Cancel Action"
	ColCancelLeadTime   = "Cancel Lead Time"
)

// Shift 班次
type Shift struct {
	ID         string
	CreatedAt  time.Time
	Start      time.Time
	End        time.Time
	Charge     string
	AgentReq   string
	ShiftType  string
	FacilityID string
	LeadTime   float64 // 发布到开始的小时数
}

// Booking 预订记录
type Booking struct {
	ID         string
	ShiftID    string
	WorkerID   string
	FacilityID string
	CreatedAt  time.Time
	Action     string
	LeadTime   float64
}

// Cancellation 取消记录
type Cancellation struct {
	ID         string
	ShiftID    string
	WorkerID   string
	FacilityID string
	CreatedAt  time.Time
	ShiftStart time.Time
	Action     string
	LeadTime   float64 // 取消时距班次开始的小时数
}

// ShiftFirstBooking 班次与其第一条预订
type ShiftFirstBooking struct {
	Shift
	Booked          bool
	BookingID       string
	BookingLeadTime float64
}

// BookingCancel 预订左连接取消，Cancel 为 nil 表示没有取消
type BookingCancel struct {
	Booking
	Cancel *Cancellation
}

// CancelLeadTime 没有取消时为NaN
func (bc BookingCancel) CancelLeadTime() float64 {
	if bc.Cancel == nil {
		return math.NaN()
	}
	return bc.Cancel.LeadTime
}

func (bc BookingCancel) CancelAction() string {
	if bc.Cancel == nil {
		return ""
	}
	return bc.Cancel.Action
}

// BookingDetail 在 BookingCancel 基础上附加班次属性
type BookingDetail struct {
	BookingCancel
	Charge          string
	AgentReq        string
	ShiftType       string
	ShiftFacilityID string
}

// Facility 优先取预订记录上的机构，缺失时退回班次上的
func (d BookingDetail) Facility() string {
	if d.FacilityID != "" {
		return d.FacilityID
	}
	return d.ShiftFacilityID
}

// GroupStats cancel_group_by 的一行
type GroupStats struct {
	Key               string
	AvgCancelLeadTime float64
	CancelCount       int
	BookingCount      int
	CancelNoCall      int
	CancelCallOff     int
	Cancel24          int
	CancelStandard    int
}

// GroupTable 按某一维度分组后的结果
type GroupTable struct {
	Field string
	File  string
	Rows  []GroupStats
}
