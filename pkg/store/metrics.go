package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// expiredRecordEvents is the one externally observable counter the put
// algorithm increments whenever a record is discarded because it, or the
// segment it would land in, already falls outside history retention.
var expiredRecordEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "versionedstore_expired_record_events_total",
	Help: "Number of puts dropped because the record was already outside history retention.",
})
