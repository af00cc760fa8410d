package sla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/contratos/internal/businesshours"
	"github.com/MrJamesThe3rd/contratos/internal/contract"
)

var ErrNoData = errors.New("no finalized contracts to compute SLA")

// Transition is one status log entry as stored, timestamps still unparsed.
type Transition struct {
	From  *string
	To    string
	At    string
	Actor *string
}

// FinalizedContract is a non-deleted contract in the terminal stage.
type FinalizedContract struct {
	ContractID  string
	CreatedAt   string
	FinalizedAt string
}

//go:generate mockgen -source=sla.go -destination=repository_mock.go -package=sla
type Repository interface {
	// TransitionLog returns the contract's transitions in insertion order.
	TransitionLog(ctx context.Context, contractID string) ([]Transition, error)
	FinalizedContracts(ctx context.Context) ([]FinalizedContract, error)
}

// Aggregator computes per-stage and average business time from the status log.
// Results are recomputed from the repository on every call.
type Aggregator struct {
	repo  Repository
	clock *businesshours.Clock
}

func NewAggregator(repo Repository, clock *businesshours.Clock) *Aggregator {
	return &Aggregator{repo: repo, clock: clock}
}

func (a *Aggregator) Clock() *businesshours.Clock {
	return a.clock
}

// StageElapsed returns the business seconds the contract spent in each stage
// before reaching the terminal stage. Revisited stages accumulate under one key.
func (a *Aggregator) StageElapsed(ctx context.Context, contractID string) (map[contract.Stage]int64, error) {
	log, err := a.repo.TransitionLog(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("fetching transition log for contract %s: %w", contractID, err)
	}

	return a.stageElapsed(log), nil
}

type point struct {
	stage contract.Stage
	at    time.Time
}

func (a *Aggregator) stageElapsed(log []Transition) map[contract.Stage]int64 {
	timeline := make([]point, 0, len(log))

	for _, tr := range log {
		if tr.To == "" || tr.At == "" {
			continue
		}

		at, err := ParseTimestamp(tr.At)
		if err != nil {
			continue
		}

		timeline = append(timeline, point{stage: contract.Stage(tr.To), at: at})
	}

	elapsed := make(map[contract.Stage]int64)

	for i := 0; i+1 < len(timeline); i++ {
		cur := timeline[i]
		if cur.stage.Terminal() {
			break
		}

		elapsed[cur.stage] += a.clock.Elapsed(cur.at, timeline[i+1].at)
	}

	return elapsed
}

// Skip records a finalized contract left out of the averages.
type Skip struct {
	ContractID string
	Reason     string
}

// Report holds averages over finalized contracts, in business days.
type Report struct {
	Population        int
	TotalBusinessDays float64
	StageBusinessDays map[contract.Stage]float64
	Skipped           []Skip
}

// sample is the measured business time of one finalized contract.
type sample struct {
	total  int64
	stages map[contract.Stage]int64
}

// outcome is the per-contract result: exactly one of sample or skip is set.
type outcome struct {
	sample *sample
	skip   *Skip
}

// AverageFinalized averages total and per-stage business time across finalized
// contracts. Contracts with malformed timestamps are reported in Skipped and do
// not count towards the population. ErrNoData is returned when nothing is left.
func (a *Aggregator) AverageFinalized(ctx context.Context) (*Report, error) {
	finalized, err := a.repo.FinalizedContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching finalized contracts: %w", err)
	}

	if len(finalized) == 0 {
		return nil, ErrNoData
	}

	var (
		sumTotal  int64
		sumStages = make(map[contract.Stage]int64)
		skipped   []Skip
		n         int
	)

	for _, st := range contract.Stages() {
		sumStages[st] = 0
	}

	for _, fc := range finalized {
		out, err := a.measure(ctx, fc)
		if err != nil {
			return nil, err
		}

		if out.skip != nil {
			skipped = append(skipped, *out.skip)
			continue
		}

		sumTotal += out.sample.total

		for st, sec := range out.sample.stages {
			if _, known := sumStages[st]; known {
				sumStages[st] += sec
			}
		}

		n++
	}

	if n == 0 {
		return nil, fmt.Errorf("%w: %d contracts skipped", ErrNoData, len(skipped))
	}

	report := &Report{
		Population:        n,
		TotalBusinessDays: a.clock.BusinessDays(average(sumTotal, n)),
		StageBusinessDays: make(map[contract.Stage]float64, len(sumStages)),
		Skipped:           skipped,
	}

	for st, sum := range sumStages {
		if st.Terminal() {
			continue
		}

		report.StageBusinessDays[st] = a.clock.BusinessDays(average(sum, n))
	}

	return report, nil
}

func (a *Aggregator) measure(ctx context.Context, fc FinalizedContract) (outcome, error) {
	created, err := ParseTimestamp(fc.CreatedAt)
	if err != nil {
		return outcome{skip: &Skip{ContractID: fc.ContractID, Reason: fmt.Sprintf("created_at: %v", err)}}, nil
	}

	finalized, err := ParseTimestamp(fc.FinalizedAt)
	if err != nil {
		return outcome{skip: &Skip{ContractID: fc.ContractID, Reason: fmt.Sprintf("finalized_at: %v", err)}}, nil
	}

	stages, err := a.StageElapsed(ctx, fc.ContractID)
	if err != nil {
		return outcome{}, err
	}

	return outcome{sample: &sample{
		total:  a.clock.Elapsed(created, finalized),
		stages: stages,
	}}, nil
}

// average truncates a floating point mean, matching the historical reports.
func average(sum int64, n int) int64 {
	return int64(float64(sum) / float64(n))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// ParseTimestamp parses an ISO-8601 instant. An explicit offset is required.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
