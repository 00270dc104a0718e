package processor

import (
	"sort"
	"strings"

	"ShiftInsight/src/utils"
)

// sortBookings 按创建时间升序稳定排序，时间相同按 ID 升序
func sortBookings(bookings []Booking) []Booking {
	sorted := make([]Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// bookingIdentity 除创建时间以外的全部字段
func bookingIdentity(b Booking) string {
	return strings.Join([]string{
		b.ID, b.ShiftID, b.WorkerID, b.FacilityID, b.Action, utils.FormatFloat(b.LeadTime),
	}, "\x1f")
}

// FilterUniqueFirst 排序后对除创建时间外完全相同的记录只保留最早的一条
func FilterUniqueFirst(bookings []Booking) []Booking {
	sorted := sortBookings(bookings)

	seen := make(map[string]struct{}, len(sorted))
	out := make([]Booking, 0, len(sorted))
	for _, b := range sorted {
		key := bookingIdentity(b)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	return out
}

// FirstBookings 每个班次最早的一次预订
func FirstBookings(bookings []Booking) []Booking {
	unique := FilterUniqueFirst(bookings)

	seen := make(map[string]struct{}, len(unique))
	out := make([]Booking, 0, len(unique))
	for _, b := range unique {
		if _, ok := seen[b.ShiftID]; ok {
			continue
		}
		seen[b.ShiftID] = struct{}{}
		out = append(out, b)
	}
	return out
}
