package controller

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// event is the concrete logiface.Event implementation every controller
// logger is built against; stumpy is the only structured-logging backend
// present anywhere in the dependency pack.
type event = stumpy.Event

// logger is shorthand for the generic type every component holds a
// pre-tagged instance of.
type logger = logiface.Logger[*event]

// newLogger builds the root logger, tagged per §6 ("structured, tagged by
// (openflow, controller) and sibling tags. Info level by default.").
func newLogger() *logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(),
		stumpy.L.WithLevel(logiface.LevelInformational),
	).Clone().
		Str("openflow", "controller").
		Logger()
}

// component returns a child logger tagged with name, e.g. "translator",
// "driver", "consistent-update", one per long-lived controller part.
func component(l *logger, name string) *logger {
	return l.Clone().Str("component", name).Logger()
}
