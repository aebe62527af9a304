// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package outcome

import (
	"github.com/samber/oops"
)

// Handler consumes one dispatched Outcome.
type Handler func(o Outcome)

// Dispatcher routes one Outcome to exactly one registered handler.
//
// Routing rules:
//   - a success outcome fires the OnSuccess handler;
//   - a failure outcome fires the handler registered for its tag;
//   - a failure whose tag has no named handler fires the OnUnknown handler.
//
// A dispatch that matches no handler is a programming-contract violation:
// every use case's failure taxonomy must be consumed by its callers. The
// dispatcher panics rather than silently swallowing the outcome.
type Dispatcher struct {
	onSuccess Handler
	onFailure map[Tag]Handler
	onUnknown Handler
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{onFailure: make(map[Tag]Handler)}
}

// OnSuccess registers the handler for success outcomes.
// Registering twice panics: one handler per key is the contract.
func (d *Dispatcher) OnSuccess(fn Handler) *Dispatcher {
	if d.onSuccess != nil {
		panic(oops.Code("DISPATCH_DUPLICATE_HANDLER").Errorf("success handler already registered"))
	}
	d.onSuccess = fn
	return d
}

// OnFailure registers a handler for one or more named failure tags.
func (d *Dispatcher) OnFailure(fn Handler, tags ...Tag) *Dispatcher {
	if len(tags) == 0 {
		panic(oops.Code("DISPATCH_NO_TAGS").Errorf("OnFailure requires at least one tag"))
	}
	for _, tag := range tags {
		if _, dup := d.onFailure[tag]; dup {
			panic(oops.Code("DISPATCH_DUPLICATE_HANDLER").
				With("tag", string(tag)).
				Errorf("failure handler already registered for tag %q", tag))
		}
		d.onFailure[tag] = fn
	}
	return d
}

// OnUnknown registers the catch-all handler for failure tags that match no
// named handler.
func (d *Dispatcher) OnUnknown(fn Handler) *Dispatcher {
	if d.onUnknown != nil {
		panic(oops.Code("DISPATCH_DUPLICATE_HANDLER").Errorf("unknown handler already registered"))
	}
	d.onUnknown = fn
	return d
}

// Dispatch routes the outcome to exactly one handler. It panics when the
// outcome matches no handler and no catch-all is registered.
func (d *Dispatcher) Dispatch(o Outcome) {
	if o.IsSuccess() {
		if d.onSuccess != nil {
			d.onSuccess(o)
			return
		}
		d.unhandled(o)
		return
	}

	if fn, ok := d.onFailure[o.Tag()]; ok {
		fn(o)
		return
	}
	d.unhandled(o)
}

func (d *Dispatcher) unhandled(o Outcome) {
	if d.onUnknown != nil {
		d.onUnknown(o)
		return
	}
	panic(oops.Code("DISPATCH_UNHANDLED_OUTCOME").
		With("tag", string(o.Tag())).
		With("success", o.IsSuccess()).
		Errorf("no handler registered for outcome %q", o.Tag()))
}
