package main

import (
	"context"

	integra "github.com/caarlos0/homekit-integra"
	"golang.org/x/exp/slices"
)

// maxEventsPerPoll bounds how far back the log is read on a single poll.
const maxEventsPerPoll = 32

type eventReader interface {
	Event(ctx context.Context, idx integra.EventIndex) (integra.EventRecord, error)
}

// eventFollower reads the events added to the panel log since the last
// poll. The log already present on the first poll is skipped.
type eventFollower struct {
	last    integra.EventIndex
	hasLast bool
	started bool
}

// poll returns the new events, oldest first.
func (f *eventFollower) poll(ctx context.Context, cli eventReader) ([]integra.EventRecord, error) {
	latest, err := cli.Event(ctx, integra.LatestEvent)
	if err != nil {
		return nil, err
	}
	if !f.started {
		f.started = true
		f.remember(latest)
		return nil, nil
	}
	if !latest.NotEmpty || f.seen(latest.Index) {
		return nil, nil
	}

	events := []integra.EventRecord{latest}
	for len(events) < maxEventsPerPoll {
		prev := events[len(events)-1].Index
		ev, err := cli.Event(ctx, prev)
		if err != nil {
			return nil, err
		}
		if !ev.NotEmpty || ev.Index == prev || f.seen(ev.Index) {
			break
		}
		events = append(events, ev)
	}
	f.remember(latest)
	slices.Reverse(events)
	return events, nil
}

// remember keeps the index of latest, unless the log is empty.
func (f *eventFollower) remember(latest integra.EventRecord) {
	if latest.NotEmpty {
		f.last = latest.Index
		f.hasLast = true
	}
}

// seen reports whether idx is the newest event already reported. While the
// log was empty nothing has been seen, so the walk stops at the empty
// record instead.
func (f *eventFollower) seen(idx integra.EventIndex) bool {
	return f.hasLast && idx == f.last
}

func logEvents(events []integra.EventRecord) {
	for _, ev := range events {
		eventCounter.WithLabelValues(ev.Class.String()).Inc()
		log.Info(
			"event",
			"date", ev.Date(),
			"time", ev.Time(),
			"text", ev.Text(),
			"code", ev.Code,
			"restore", ev.Restore,
			"partition", ev.Partition,
			"source", ev.Source,
		)
	}
}
