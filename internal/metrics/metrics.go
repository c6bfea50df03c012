package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan outcome counters, labelled by result so dashboards can separate
// first marks from repeats and rejections.
var (
	ScansAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattend_scans_accepted_total",
		Help: "Scans that produced a new attendance record.",
	})
	ScansDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattend_scans_duplicate_total",
		Help: "Scans by students already marked for the day.",
	})
	ScansRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattend_scans_rejected_total",
		Help: "Scans rejected before any record was written.",
	}, []string{"reason"})
	ReportsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrattend_reports_built_total",
		Help: "Attendance reports computed.",
	})
)
