/*
Package resilience provides the circuit breaker that shields widget renders
from a failing upstream.

# Overview

Feed-style widgets call external services on every render. When an upstream
starts failing, retrying it on each dashboard load burns the request budget
and slows every page. The breaker fails those calls fast until the upstream
has had time to recover.

# Usage

	breaker := resilience.New(resilience.Config{
		Name:      "feed",
		Threshold: 5,
		Cooldown:  60 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Printf("breaker %s: %s -> %s", name, from, to)
		},
	})

	err := breaker.Execute(func() error {
		return fetch()
	})

# States

	Closed --[Threshold consecutive failures]-> Open
	Open --[Cooldown elapsed]-> Half-Open
	Half-Open --[probe failure]-> Open
	Half-Open --[Probes successes]-> Closed

While open, Execute returns ErrOpen without invoking the function. Half-open
admits a single probe at a time.
*/
package resilience
