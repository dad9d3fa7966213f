package service

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultPromStaticsURI = "/metrics"

var (
	defines = [2]string{"ftdc", "feed"}

	subscriberGauge    *prometheus.GaugeVec
	recordCounter      *prometheus.CounterVec
	decodeErrCounter   *prometheus.CounterVec
	frameSizeHistogram *prometheus.HistogramVec
)

func init() {
	subscriberGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: defines[0],
			Subsystem: defines[1],
			Name:      "subscriber",
			Help:      "Record flow subscriber total number",
		},
		[]string{"schema"},
	)

	recordCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defines[0],
			Subsystem: defines[1],
			Name:      "record",
			Help:      "Published record count",
		},
		[]string{"schema"},
	)

	decodeErrCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defines[0],
			Subsystem: defines[1],
			Name:      "decodeErr",
			Help:      "Dropped feed frame count",
		},
		[]string{"schema"},
	)

	frameSizeHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: defines[0],
			Subsystem: defines[1],
			Name:      "frameSize",
			Help:      "Feed frame body size histogram",
			Buckets:   []float64{32, 64, 128, 256, 512, 1024, 2048, 4096, 8192},
		},
		[]string{"schema"},
	)
}

// CollectPromStatics collect statics in prometheus
func CollectPromStatics(uri string) error {
	prometheus.MustRegister(subscriberGauge)
	prometheus.MustRegister(recordCounter)
	prometheus.MustRegister(decodeErrCounter)
	prometheus.MustRegister(frameSizeHistogram)

	if uri == "" {
		uri = DefaultPromStaticsURI
	}

	if err := registerHandler(uri, promhttp.Handler()); err != nil {
		return err
	}

	log.Printf("Prometheus URI registered, expose metrics at \"%s\"", uri)

	return nil
}
