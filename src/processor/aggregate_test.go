package processor

import (
	"math"
	"testing"

	"ShiftInsight/src/config"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelGroupBy_LeadTimeBuckets(t *testing.T) {
	rules := DefaultActionRules()

	tests := []struct {
		name                    string
		lead                    float64
		callOff, in24, standard int
	}{
		{"call off", 3.5, 1, 0, 0},
		{"exactly 4h", 4.0, 0, 1, 0},
		{"inside 24h", 23.9, 0, 1, 0},
		{"exactly 24h", 24.0, 0, 0, 1},
		{"negative", -2, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := CancelGroupBy([]BookingDetail{detail("w1", "30", "WORKER_CANCEL", tt.lead)}, ChargeDimension, rules)
			require.Len(t, table.Rows, 1)
			row := table.Rows[0]
			assert.Equal(t, tt.callOff, row.CancelCallOff)
			assert.Equal(t, tt.in24, row.Cancel24)
			assert.Equal(t, tt.standard, row.CancelStandard)
			assert.Equal(t, 0, row.CancelNoCall)
			assert.Equal(t, 1, row.CancelCount)
			assert.Equal(t, 1, row.BookingCount)
		})
	}
}

func TestCancelGroupBy_GroupOwnRows(t *testing.T) {
	details := []BookingDetail{
		detail("w1", "30", "WORKER_CANCEL", 3.5),
		detail("w2", "30", "", 0),
		detail("w3", "40", "NO_CALL_NO_SHOW", -1),
		detail("w4", "40", "WORKER_CANCEL", 24),
		detail("w5", "40", "WORKER_CANCEL", 10),
	}

	got := CancelGroupBy(details, ChargeDimension, DefaultActionRules())
	want := GroupTable{
		Field: ColCharge,
		File:  "charge.csv",
		Rows: []GroupStats{
			{Key: "30", AvgCancelLeadTime: 3.5, CancelCount: 1, BookingCount: 2, CancelCallOff: 1},
			{Key: "40", AvgCancelLeadTime: 11, CancelCount: 3, BookingCount: 3, CancelNoCall: 1, Cancel24: 1, CancelStandard: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CancelGroupBy mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelGroupBy_EmptyGroupsAbsent(t *testing.T) {
	details := []BookingDetail{
		detail("w1", "", "WORKER_CANCEL", 3.5),
		detail("w2", "  ", "WORKER_CANCEL", 5),
	}
	table := CancelGroupBy(details, ChargeDimension, DefaultActionRules())
	assert.Empty(t, table.Rows)

	table = CancelGroupBy(nil, WorkerDimension, DefaultActionRules())
	assert.Empty(t, table.Rows)
}

func TestCancelGroupBy_NoCancellations(t *testing.T) {
	table := CancelGroupBy([]BookingDetail{detail("w1", "30", "", 0)}, WorkerDimension, DefaultActionRules())
	want := []GroupStats{{Key: "w1", AvgCancelLeadTime: math.NaN(), BookingCount: 1}}
	if diff := cmp.Diff(want, table.Rows, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelGroupBy_KeyOrder(t *testing.T) {
	numeric := []BookingDetail{detail("w1", "100", "", 0), detail("w2", "9", "", 0), detail("w3", "25.5", "", 0)}
	table := CancelGroupBy(numeric, ChargeDimension, DefaultActionRules())
	assert.Equal(t, []string{"9", "25.5", "100"}, keysOf(table))

	mixed := []BookingDetail{detail("w1", "100", "", 0), detail("w2", "9", "", 0), detail("w3", "abc", "", 0)}
	table = CancelGroupBy(mixed, ChargeDimension, DefaultActionRules())
	assert.Equal(t, []string{"100", "9", "abc"}, keysOf(table))
}

func TestCancelGroupBy_FacilityFallback(t *testing.T) {
	a := detail("w1", "30", "", 0)
	a.ShiftFacilityID = "f1"
	b := detail("w2", "30", "", 0)
	b.FacilityID = "fb"

	table := CancelGroupBy([]BookingDetail{a, b}, FacilityDimension, DefaultActionRules())
	assert.Equal(t, []string{"f1", "fb"}, keysOf(table))
}

func TestCancelGroupBy_FacilityPrefersBooking(t *testing.T) {
	a := detail("w1", "30", "WORKER_CANCEL", 2)
	a.FacilityID = "F_BOOKING"
	a.ShiftFacilityID = "F_SHIFT"
	b := detail("w2", "30", "", 0)
	b.ShiftFacilityID = "F_SHIFT"

	table := CancelGroupBy([]BookingDetail{a, b}, FacilityDimension, DefaultActionRules())
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "F_BOOKING", table.Rows[0].Key)
	assert.Equal(t, 1, table.Rows[0].CancelCount)
	assert.Equal(t, "F_SHIFT", table.Rows[1].Key)
	assert.Equal(t, 0, table.Rows[1].CancelCount)
}

func TestRulesFromConfig(t *testing.T) {
	dc := config.DefaultDataConfig()
	dc.Actions["worker_cancel"] = "CANCEL"
	dc.Thresholds["call_off"] = 2

	rules := RulesFromConfig(dc)
	assert.Equal(t, ActionRules{NoCall: "NO_CALL_NO_SHOW", WorkerCancel: "CANCEL", CallOff: 2, Standard: 24}, rules)

	table := CancelGroupBy([]BookingDetail{detail("w1", "30", "CANCEL", 3)}, ChargeDimension, rules)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1, table.Rows[0].Cancel24)
}

func TestDimensions(t *testing.T) {
	var defaults []string
	for _, d := range Dimensions() {
		if d.Default {
			defaults = append(defaults, d.File)
		}
	}
	assert.Equal(t, []string{"charge.csv", "agent_req.csv", "shift_type.csv"}, defaults)
}

func keysOf(t GroupTable) []string {
	keys := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = r.Key
	}
	return keys
}
