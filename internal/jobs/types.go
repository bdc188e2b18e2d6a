// Package jobs provides an in-process job scheduler with unique work names.
//
// Work is identified by a unique name. Enqueueing work under a name that is
// already in use either keeps the existing work or replaces it, depending on
// the Policy. Work can be one-time or periodic, can wait for network
// connectivity, is retried with exponential backoff when the runner asks for
// it and carries tags whose aggregate running state can be observed.
//
// Pending work definitions are checkpointed to a kv.Store so scheduled work
// survives restarts. Delivery is at-least-once.
package jobs

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of a single job run
type Result int

const (
	// ResultSuccess means the run completed
	ResultSuccess Result = iota
	// ResultRetry asks the scheduler to run the job again after a backoff delay
	ResultRetry
	// ResultFailure means the run failed and must not be retried
	ResultFailure
)

// String returns a lowercase name of the result
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultRetry:
		return "retry"
	case ResultFailure:
		return "failure"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Policy decides what happens when work is enqueued under a name that is already in use
type Policy int

const (
	// PolicyKeep drops the new work while existing work is pending or running
	PolicyKeep Policy = iota
	// PolicyReplace cancels pending work and installs the new definition.
	// A running instance is allowed to finish but is not rescheduled.
	PolicyReplace
)

// String returns a lowercase name of the policy
func (p Policy) String() string {
	switch p {
	case PolicyKeep:
		return "keep"
	case PolicyReplace:
		return "replace"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Constraints restricts when work may run
type Constraints struct {
	// NetworkConnected delays work until the network is reachable
	NetworkConnected bool `json:"networkConnected,omitempty"`
}

// Data is the metadata passed to a job run
type Data struct {
	Strings      map[string]string   `json:"strings,omitempty"`
	StringArrays map[string][]string `json:"stringArrays,omitempty"`
}

// WithString returns a copy of d with key set to value
func (d Data) WithString(key, value string) Data {
	out := d.clone()
	if out.Strings == nil {
		out.Strings = make(map[string]string)
	}
	out.Strings[key] = value
	return out
}

// WithStringArray returns a copy of d with key set to values
func (d Data) WithStringArray(key string, values []string) Data {
	out := d.clone()
	if out.StringArrays == nil {
		out.StringArrays = make(map[string][]string)
	}
	out.StringArrays[key] = slices.Clone(values)
	return out
}

// String returns the string stored under key
func (d Data) String(key string) (string, bool) {
	v, ok := d.Strings[key]
	return v, ok
}

// StringArray returns the string array stored under key
func (d Data) StringArray(key string) ([]string, bool) {
	v, ok := d.StringArrays[key]
	return slices.Clone(v), ok
}

func (d Data) clone() Data {
	out := Data{}
	if d.Strings != nil {
		out.Strings = make(map[string]string, len(d.Strings))
		for k, v := range d.Strings {
			out.Strings[k] = v
		}
	}
	if d.StringArrays != nil {
		out.StringArrays = make(map[string][]string, len(d.StringArrays))
		for k, v := range d.StringArrays {
			out.StringArrays[k] = slices.Clone(v)
		}
	}
	return out
}

// WorkRequest describes a unit of work
type WorkRequest struct {
	// Tags label the work. The aggregate running state of a tag can be observed.
	Tags []string `json:"tags,omitempty"`
	// Data is passed to every run of the work
	Data Data `json:"data"`
	// InitialDelay postpones the first run
	InitialDelay time.Duration `json:"initialDelay,omitempty"`
	// Constraints restrict when the work may run
	Constraints Constraints `json:"constraints"`
	// BackoffDelay is the first retry delay; later retries double it.
	// Zero uses the scheduler default.
	BackoffDelay time.Duration `json:"backoffDelay,omitempty"`
}

// Params is what a runner receives for one run
type Params struct {
	// RunID identifies this run
	RunID uuid.UUID
	// Name is the unique work name
	Name string
	Tags []string
	Data Data
	// RunAttempt is 0 for the first run and counts consecutive retries after that
	RunAttempt int
	// Periodic is true for periodic work
	Periodic bool
}

// HasTag reports whether the work carries tag
func (p Params) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Runner executes work
type Runner interface {
	Run(ctx context.Context, params Params) Result
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context, params Params) Result

// Run calls f
func (f RunnerFunc) Run(ctx context.Context, params Params) Result {
	return f(ctx, params)
}

// Scheduler schedules unique work
//
//go:generate mockgen -destination=mocks/mock_scheduler.go -package=mocks -source=types.go Scheduler
type Scheduler interface {
	// EnqueueUnique schedules one-time work under name
	EnqueueUnique(ctx context.Context, name string, policy Policy, req WorkRequest) error

	// EnqueueUniquePeriodic schedules work under name that runs every period
	EnqueueUniquePeriodic(ctx context.Context, name string, policy Policy, period time.Duration, req WorkRequest) error

	// CancelUnique cancels pending work under name. Running work is allowed to finish.
	// Cancelling a name with no work is not an error.
	CancelUnique(ctx context.Context, name string) error

	// ObserveTag calls fn with the current running state of work tagged tag and
	// again on every change. The returned function stops the observation.
	ObserveTag(tag string, fn func(running bool)) (unsubscribe func())
}

// NetworkMonitor reports network connectivity
type NetworkMonitor interface {
	Connected() bool
}

// AlwaysConnected is a NetworkMonitor that always reports a connected network
type AlwaysConnected struct{}

// Connected returns true
func (AlwaysConnected) Connected() bool { return true }
