package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hoardingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hoarding_listings_created_total",
		Help: "Total number of hoardings added",
	})

	nearbyResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hoarding_nearby_results",
		Help:    "Number of listings returned per nearby query",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})
)
