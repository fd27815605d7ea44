package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var violatedGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "zone",
	Name:        "violated",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name"})

var tamperGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "zone",
	Name:        "tamper",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name"})

var alarmGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "zone",
	Name:        "alarm",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name"})

var bypassedGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "zone",
	Name:        "bypassed",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name"})

var troubleGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "zone",
	Name:        "trouble",
	Help:        "",
	ConstLabels: map[string]string{},
}, []string{"name"})

var panelTroublesGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "panel",
	Name:        "troubles",
	Help:        "Whether the panel reports troubles.",
	ConstLabels: map[string]string{},
})

var panelServiceModeGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "panel",
	Name:        "service_mode",
	Help:        "Whether the panel is in service mode.",
	ConstLabels: map[string]string{},
})

var eventCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "panel",
	Name:        "events_total",
	Help:        "Events read from the panel event log.",
	ConstLabels: map[string]string{},
}, []string{"class"})

var requestCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "client",
	Name:        "requests_total",
	Help:        "",
	ConstLabels: map[string]string{},
})

var requestErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace:   "homekit_integra",
	Subsystem:   "client",
	Name:        "request_errors_total",
	Help:        "",
	ConstLabels: map[string]string{},
})
