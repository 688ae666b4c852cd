package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/lapwatch/lapwatch-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents         int
	EventsByComponent   map[log.Component]int
	EventsByCategory    map[log.Category]int
	TransitionsByOp     map[log.Operation]int
	Instances           map[string]*InstanceStats
	Errors              int
	CountdownsExpired   int
	CountdownsCancelled int
	TimeRange           struct {
		Start time.Time
		End   time.Time
	}
}

// InstanceStats holds statistics for a single timer instance.
type InstanceStats struct {
	Component log.Component
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Errors    int

	// Stopwatch: completed runs and the total reported by the last stop
	Stops     int
	LastTotal time.Duration

	// Countdown: finished runs by outcome
	Expired   int
	Cancelled int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func newStats() *Stats {
	return &Stats{
		EventsByComponent: make(map[log.Component]int),
		EventsByCategory:  make(map[log.Category]int),
		TransitionsByOp:   make(map[log.Operation]int),
		Instances:         make(map[string]*InstanceStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByComponent[event.Component]++
	s.EventsByCategory[event.Category]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	inst, ok := s.Instances[event.InstanceID]
	if !ok {
		inst = &InstanceStats{
			Component: event.Component,
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Instances[event.InstanceID] = inst
	}
	inst.Events++
	if event.Timestamp.After(inst.LastSeen) {
		inst.LastSeen = event.Timestamp
	}

	if event.Error != nil {
		s.Errors++
		inst.Errors++
	}

	tr := event.Transition
	if tr == nil {
		return
	}
	s.TransitionsByOp[tr.Op]++

	switch tr.Op {
	case log.OpStop:
		inst.Stops++
		if tr.Elapsed != nil {
			inst.LastTotal = *tr.Elapsed
		}
	case log.OpExpire:
		inst.Expired++
		s.CountdownsExpired++
	case log.OpCancel:
		inst.Cancelled++
		s.CountdownsCancelled++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== lapwatch Event Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Component:")
	for _, c := range []log.Component{log.ComponentStopwatch, log.ComponentCountdown} {
		if count := stats.EventsByComponent[c]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, c := range []log.Category{log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[c]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Transitions by Operation:")
	for _, op := range operations {
		if count := stats.TransitionsByOp[op]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if stats.CountdownsExpired+stats.CountdownsCancelled > 0 {
		fmt.Fprintf(w, "Countdowns: %d expired, %d cancelled\n", stats.CountdownsExpired, stats.CountdownsCancelled)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Instances: %d\n", len(stats.Instances))
	if len(stats.Instances) > 0 {
		// Sort by first seen time
		type instInfo struct {
			id    string
			stats *InstanceStats
		}
		insts := make([]instInfo, 0, len(stats.Instances))
		for id, is := range stats.Instances {
			insts = append(insts, instInfo{id, is})
		}
		sort.Slice(insts, func(i, j int) bool {
			return insts[i].stats.FirstSeen.Before(insts[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, in := range insts {
			span := in.stats.LastSeen.Sub(in.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %s %d events, span %s\n", shortenID(in.id), in.stats.Component, in.stats.Events, span)
			if in.stats.Stops > 0 {
				fmt.Fprintf(w, "           Stops: %d (last total: %s)\n", in.stats.Stops, in.stats.LastTotal)
			}
			if in.stats.Expired+in.stats.Cancelled > 0 {
				fmt.Fprintf(w, "           Runs: %d expired, %d cancelled\n", in.stats.Expired, in.stats.Cancelled)
			}
			if in.stats.Errors > 0 {
				fmt.Fprintf(w, "           Rejected: %d\n", in.stats.Errors)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
