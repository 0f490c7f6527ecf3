package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var nearbyReads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hoarding_client_nearby_reads_total",
	Help: "Nearby reads by result source (cache, network, stale).",
}, []string{"source"})
