package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat outcomes.
const (
	outcomeAnswered    = "answered"
	outcomeNoHits      = "no_hits"
	outcomeDisabled    = "disabled"
	outcomeUnavailable = "unavailable"
	outcomeInvalid     = "invalid"
	outcomeError       = "error"
)

var (
	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearsight_rag_requests_total",
		Help: "Knowledge-base chat requests by outcome.",
	}, []string{"outcome"})

	historyWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearsight_chat_history_write_failures_total",
		Help: "Chat turns that could not be persisted.",
	})
)
