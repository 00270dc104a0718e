package processor

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"ShiftInsight/src/config"
)

// ActionRules 取消动作代码与提前量阈值(小时)
type ActionRules struct {
	NoCall       string
	WorkerCancel string
	CallOff      float64 // 小于该值为 call off
	Standard     float64 // 大于等于该值为 standard
}

func DefaultActionRules() ActionRules {
	return RulesFromConfig(config.DefaultDataConfig())
}

// RulesFromConfig 从数据配置中读取动作代码和阈值
func RulesFromConfig(dc *config.DataConfig) ActionRules {
	return ActionRules{
		NoCall:       dc.GetAction("no_call"),
		WorkerCancel: dc.GetAction("worker_cancel"),
		CallOff:      dc.GetThreshold("call_off"),
		Standard:     dc.GetThreshold("standard"),
	}
}

// Dimension 分组维度
type Dimension struct {
	Field   string // 输出表的第一列列名
	File    string
	Default bool // 默认运行即导出
	Key     func(BookingDetail) string
}

var (
	WorkerDimension = Dimension{
		Field: ColWorkerID, File: "worker.csv",
		Key: func(d BookingDetail) string { return d.WorkerID },
	}
	FacilityDimension = Dimension{
		Field: ColFacilityID, File: "facility.csv",
		Key: BookingDetail.Facility,
	}
	ChargeDimension = Dimension{
		Field: ColCharge, File: "charge.csv", Default: true,
		Key: func(d BookingDetail) string { return d.Charge },
	}
	AgentReqDimension = Dimension{
		Field: ColAgentReq, File: "agent_req.csv", Default: true,
		Key: func(d BookingDetail) string { return d.AgentReq },
	}
	ShiftTypeDimension = Dimension{
		Field: ColShiftType, File: "shift_type.csv", Default: true,
		Key: func(d BookingDetail) string { return d.ShiftType },
	}
)

// Dimensions 所有分组维度，顺序即导出顺序
func Dimensions() []Dimension {
	return []Dimension{
		WorkerDimension,
		FacilityDimension,
		ChargeDimension,
		AgentReqDimension,
		ShiftTypeDimension,
	}
}

// CancelGroupBy 按维度分组并统计取消情况
// 空键跳过；每组只用本组自己的行计算
func CancelGroupBy(details []BookingDetail, dim Dimension, rules ActionRules) GroupTable {
	groups := make(map[string][]BookingDetail)
	for _, d := range details {
		key := strings.TrimSpace(dim.Key(d))
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], d)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sortKeys(keys)

	rows := make([]GroupStats, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, groupStats(k, groups[k], rules))
	}
	return GroupTable{Field: dim.Field, File: dim.File, Rows: rows}
}

func groupStats(key string, rows []BookingDetail, rules ActionRules) GroupStats {
	st := GroupStats{Key: key, BookingCount: len(rows)}

	sum := 0.0
	for _, d := range rows {
		lead := d.CancelLeadTime()
		if !math.IsNaN(lead) {
			sum += lead
			st.CancelCount++
		}

		switch d.CancelAction() {
		case "":
		case rules.NoCall:
			st.CancelNoCall++
		case rules.WorkerCancel:
			// NaN 与任何值比较都为 false，不计入任何一档
			switch {
			case lead < rules.CallOff:
				st.CancelCallOff++
			case lead >= rules.CallOff && lead < rules.Standard:
				st.Cancel24++
			case lead >= rules.Standard:
				st.CancelStandard++
			}
		}
	}

	st.AvgCancelLeadTime = math.NaN()
	if st.CancelCount > 0 {
		st.AvgCancelLeadTime = sum / float64(st.CancelCount)
	}
	return st
}

// sortKeys 全部可解析为数字时按数值排序，否则按字典序
func sortKeys(keys []string) {
	nums := make(map[string]float64, len(keys))
	for _, k := range keys {
		v, err := strconv.ParseFloat(k, 64)
		if err != nil {
			sort.Strings(keys)
			return
		}
		nums[k] = v
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if nums[keys[i]] != nums[keys[j]] {
			return nums[keys[i]] < nums[keys[j]]
		}
		return keys[i] < keys[j]
	})
}
