package processor

import (
	"testing"
	"time"

	"ShiftInsight/src/datasource/file"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/require"
)

const (
	shiftCSV = `ID,Start,End,Created At,Charge,Agent Req,Shift Type,Facility ID
s1,2021-10-02 08:00:00,2021-10-02 16:00:00,2021-10-01 08:00:00,30,CNA,am,f1
s2,2021-10-03 08:00:00,2021-10-03 16:00:00,2021-10-02 20:00:00,40,LVN,pm,f2
`
	bookingCSV = `ID,Shift ID,Worker ID,Created At,Action,Lead Time
b1,s1,w1,2021-10-01 09:00:00,SHIFT_CLAIM,23
b2,s2,w2,2021-10-02 21:00:00,SHIFT_CLAIM,11
b3,s2,w3,2021-10-02 22:00:00,SHIFT_CLAIM,10
b4,s9,w1,2021-10-01 09:00:00,SHIFT_CLAIM,5
`
	cancelCSV = `ID,Shift ID,Worker ID,Created At,Shift Start Logs,Action,Lead Time
c1,s1,w1,2021-10-02 04:30:00,2021-10-02 08:00:00,WORKER_CANCEL,3.5
c2,s2,w2,2021-10-02 08:00:00,2021-10-03 08:00:00,WORKER_CANCEL,24
c3,s2,w3,2021-10-03 09:00:00,2021-10-03 08:00:00,NO_CALL_NO_SHOW,-1
c4,s9,w1,2021-10-01 10:00:00,2021-10-01 12:00:00,WORKER_CANCEL,2
`
)

func mustCSV(t *testing.T, data string) dataframe.DataFrame {
	t.Helper()
	df, err := file.ReadCSVString(data)
	require.NoError(t, err)
	return df
}

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

// detail 构造一条带取消记录的明细
func detail(worker, charge, action string, lead float64) BookingDetail {
	d := BookingDetail{
		BookingCancel: BookingCancel{
			Booking: Booking{ID: "b-" + worker, ShiftID: "s1", WorkerID: worker},
		},
		Charge: charge,
	}
	if action != "" {
		d.Cancel = &Cancellation{ID: "c-" + worker, ShiftID: "s1", WorkerID: worker, Action: action, LeadTime: lead}
	}
	return d
}
