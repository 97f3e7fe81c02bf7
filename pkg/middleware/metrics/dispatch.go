package metrics

import "github.com/joeydtaylor/steeze-dispatch/pkg/dispatch"

// DispatchObserver counts chain outcomes per handler.
type DispatchObserver struct{}

func (DispatchObserver) Observe(handler string, o dispatch.Outcome) {
	if handler == "" {
		handler = "-"
	}
	dispatchOutcomes.WithLabelValues(handler, string(o)).Inc()
}

func ProvideDispatchObserver() dispatch.Observer { return DispatchObserver{} }
