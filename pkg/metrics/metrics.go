// Package metrics holds the Prometheus collectors exported on /metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "arcane_xp_awarded_total",
	Help: "Total XP granted by message activity",
})

var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Name: "arcane_level_ups_total",
	Help: "Number of level-up notifications emitted",
})

var Warns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arcane_warns_total",
	Help: "Warnings issued, by source (command or spam)",
}, []string{"source"})

var ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arcane_moderation_actions_total",
	Help: "Moderation actions attempted, by action and result",
}, []string{"action", "result"})

var Commands = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arcane_commands_total",
	Help: "Commands executed, by name and form (slash or prefix)",
}, []string{"command", "form"})

var CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "arcane_command_errors_total",
	Help: "Commands that returned an error, by name and error kind",
}, []string{"command", "kind"})

// Result labels a moderation outcome
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
