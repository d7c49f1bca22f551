// Command controller runs a standalone OpenFlow 1.0 controller with a
// fixed "drop everything" default policy, demonstrating the package
// controller entry points against policy.Static in place of a real
// compiler.
package main

import (
	"flag"
	"log"

	"github.com/netrack/ofcontroller/controller"
	"github.com/netrack/ofcontroller/policy"
	"github.com/netrack/ofcontroller/topology"
)

func main() {
	addr := flag.String("addr", ":6633", "southbound listen address")
	consistent := flag.Bool("consistent", false, "use the per-packet-consistent updater instead of best-effort")
	flag.Parse()

	cfg := controller.DefaultConfig()
	cfg.Addr = *addr
	if *consistent {
		cfg.Mode = controller.PerPacketConsistent
	}

	dropAll := &policy.Static{
		Label: "drop",
		Table: policy.FlowTable{{Pattern: policy.Pattern{}}},
	}
	compiler := dropAll
	evaluator := &policy.StaticEvaluator{Compiler: compiler}

	app := func(topo topology.View, w controller.Writer, init bool) controller.HandlerFunc {
		return func(ev controller.Event) (policy.Policy, bool) {
			log.Printf("event: %s switch=%d port=%d", ev.Kind, ev.Switch, ev.Port)
			return nil, false
		}
	}

	log.Printf("listening on %s", cfg.Addr)
	if err := controller.Start(app, cfg, compiler, evaluator, dropAll); err != nil {
		log.Fatal(err)
	}
}
