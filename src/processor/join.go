package processor

import (
	"fmt"
	"math"
	"sort"

	"ShiftInsight/src/config"
	"ShiftInsight/src/utils"
)

// JoinShiftFirstBooking 班次左连接首次预订，每个班次一行
func JoinShiftFirstBooking(shifts []Shift, first []Booking) []ShiftFirstBooking {
	byShift := make(map[string]Booking, len(first))
	for _, b := range first {
		if _, ok := byShift[b.ShiftID]; !ok {
			byShift[b.ShiftID] = b
		}
	}

	out := make([]ShiftFirstBooking, 0, len(shifts))
	for _, s := range shifts {
		row := ShiftFirstBooking{Shift: s, BookingLeadTime: math.NaN()}
		if b, ok := byShift[s.ID]; ok {
			row.Booked = true
			row.BookingID = b.ID
			row.BookingLeadTime = b.LeadTime
			if math.IsNaN(row.BookingLeadTime) {
				row.BookingLeadTime = utils.HoursBetween(b.CreatedAt, s.Start)
			}
		}
		out = append(out, row)
	}
	return out
}

func workerKey(shiftID, workerID string) string {
	return shiftID + "\x1f" + workerID
}

// DedupResult 去重统计
type DedupResult struct {
	Cancels    []Cancellation
	Dropped    int // 被丢弃的取消记录数
	Duplicated int // 有多条取消记录的(班次,员工)数
}

// DedupCancellations 处理同一(班次,员工)的多条取消记录
// earliest: 只保留最早的一条(时间相同按 ID 升序); all: 全部保留
func DedupCancellations(cancels []Cancellation, policy string) (DedupResult, error) {
	counts := make(map[string]int, len(cancels))
	for _, c := range cancels {
		counts[workerKey(c.ShiftID, c.WorkerID)]++
	}
	duplicated := 0
	for _, n := range counts {
		if n > 1 {
			duplicated++
		}
	}

	switch policy {
	case config.DedupAll:
		kept := make([]Cancellation, len(cancels))
		copy(kept, cancels)
		return DedupResult{Cancels: kept, Duplicated: duplicated}, nil
	case config.DedupEarliest, "":
	default:
		return DedupResult{}, fmt.Errorf("未知的取消去重策略: %q", policy)
	}

	earliest := make(map[string]int, len(counts))
	for i, c := range cancels {
		key := workerKey(c.ShiftID, c.WorkerID)
		j, ok := earliest[key]
		if !ok || cancelBefore(c, cancels[j]) {
			earliest[key] = i
		}
	}

	// 保持原始顺序
	idx := make([]int, 0, len(earliest))
	for _, i := range earliest {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	kept := make([]Cancellation, 0, len(idx))
	for _, i := range idx {
		kept = append(kept, cancels[i])
	}
	return DedupResult{
		Cancels:    kept,
		Dropped:    len(cancels) - len(kept),
		Duplicated: duplicated,
	}, nil
}

func cancelBefore(a, b Cancellation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// JoinBookingCancel 预订左连接取消，键为(Shift ID, Worker ID)
// 一条预订匹配多条取消时每条取消各输出一行
func JoinBookingCancel(bookings []Booking, cancels []Cancellation) []BookingCancel {
	byKey := make(map[string][]int, len(cancels))
	for i, c := range cancels {
		key := workerKey(c.ShiftID, c.WorkerID)
		byKey[key] = append(byKey[key], i)
	}

	out := make([]BookingCancel, 0, len(bookings))
	for _, b := range bookings {
		matches := byKey[workerKey(b.ShiftID, b.WorkerID)]
		if len(matches) == 0 {
			out = append(out, BookingCancel{Booking: b})
			continue
		}
		for _, i := range matches {
			c := cancels[i]
			out = append(out, BookingCancel{Booking: b, Cancel: &c})
		}
	}
	return out
}

// JoinBookingDetail 附加班次属性(Charge, Agent Req, Shift Type, Facility ID)
// 班次 ID 重复时取第一条
func JoinBookingDetail(rows []BookingCancel, shifts []Shift) []BookingDetail {
	byID := make(map[string]Shift, len(shifts))
	for _, s := range shifts {
		if _, ok := byID[s.ID]; !ok {
			byID[s.ID] = s
		}
	}

	out := make([]BookingDetail, 0, len(rows))
	for _, bc := range rows {
		d := BookingDetail{BookingCancel: bc}
		if s, ok := byID[bc.ShiftID]; ok {
			d.Charge = s.Charge
			d.AgentReq = s.AgentReq
			d.ShiftType = s.ShiftType
			d.ShiftFacilityID = s.FacilityID
		}
		out = append(out, d)
	}
	return out
}
