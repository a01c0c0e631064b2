package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pfal_readings_received_total",
		Help: "Sensor readings accepted into the snapshot, per kind.",
	}, []string{"kind"})

	readingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pfal_readings_rejected_total",
		Help: "Inbound payloads rejected before reaching the snapshot.",
	}, []string{"kind", "cause"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pfal_commands_published_total",
		Help: "Actuator commands handed to the transport.",
	}, []string{"actuator", "command"})

	forwardFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pfal_command_forward_failures_total",
		Help: "Commands whose hand-off to the transport failed.",
	})

	ruleTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pfal_rule_ticks_total",
		Help: "Rule engine evaluations, per trigger source.",
	}, []string{"trigger"})
)
