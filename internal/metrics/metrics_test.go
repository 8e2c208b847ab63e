package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAdmission(t *testing.T) {
	before := testutil.ToFloat64(AdmissionsTotal.WithLabelValues("confirmed"))
	RecordAdmission("confirmed")
	RecordAdmission("rejected")

	assert.Equal(t, before+1, testutil.ToFloat64(AdmissionsTotal.WithLabelValues("confirmed")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(AdmissionsTotal.WithLabelValues("rejected")), 1.0)
}

func TestRecordScheduleUpdate(t *testing.T) {
	before := testutil.ToFloat64(ScheduleUpdatesTotal.WithLabelValues("moved"))
	RecordScheduleUpdate("moved")

	assert.Equal(t, before+1, testutil.ToFloat64(ScheduleUpdatesTotal.WithLabelValues("moved")))
}

func TestNotifyQueueLengthGauge(t *testing.T) {
	NotifyQueueLength.Set(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(NotifyQueueLength))
}
