/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package jobs

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// expectedCount is the number of concurrent attempts of a job,
// the jobs are created with a backoff limit of zero.
const expectedCount = 1

// State is the classification of a single job record.
type State int

const (
	// Absent means there is no record.
	Absent State = iota
	// NotStarted means no pod has been scheduled yet.
	NotStarted
	// Running means the attempt is in progress.
	Running
	// Succeeded means the attempt completed.
	Succeeded
	// Failed means the attempt errored.
	Failed
	// Indeterminate means the counters don't match any known state.
	Indeterminate
)

func (s State) String() string {
	switch s {
	case Absent:
		return "Absent"
	case NotStarted:
		return "NotStarted"
	case Running:
		return "Running"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return "Indeterminate"
	}
}

// Outcome reduces a State to unknown, success or failure.
// OutcomeNone is returned when there is nothing to report.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeUnknown
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "Unknown"
	case OutcomeSuccess:
		return "Success"
	case OutcomeFailure:
		return "Failure"
	default:
		return "None"
	}
}

// Finished reports whether the job has completed, either way.
func (o Outcome) Finished() bool {
	return o == OutcomeSuccess || o == OutcomeFailure
}

// Value returns true for success, false for failure and nil otherwise.
func (o Outcome) Value() *bool {
	var v bool
	switch o {
	case OutcomeSuccess:
		v = true
	case OutcomeFailure:
		v = false
	default:
		return nil
	}
	return &v
}

// Outcome returns the outcome of the state.
func (s State) Outcome() Outcome {
	switch s {
	case Running:
		return OutcomeUnknown
	case Succeeded:
		return OutcomeSuccess
	case Failed:
		return OutcomeFailure
	default:
		return OutcomeNone
	}
}

// Classify returns the state of the given record. Success and failure
// are checked before activity, a finished job can report stale active counts.
func Classify(r *Record) State {
	if r == nil {
		return Absent
	}

	switch {
	case r.Succeeded == expectedCount:
		return Succeeded
	case r.Failed == expectedCount:
		return Failed
	case r.Active == expectedCount:
		return Running
	case r.Active == 0:
		return NotStarted
	default:
		return Indeterminate
	}
}

// ClassifyAll returns the outcome of each record, in the same order.
func ClassifyAll(ctx context.Context, records []Record) []Outcome {
	logger := log.FromContext(ctx)
	outcomes := make([]Outcome, 0, len(records))
	for i := range records {
		state := Classify(&records[i])
		switch state {
		case NotStarted:
			logger.V(1).Info("job has not started yet", "job", records[i].Name)
		case Indeterminate:
			logger.Info("job in an indeterminate state", "job", records[i].Name,
				"active", records[i].Active, "succeeded", records[i].Succeeded, "failed", records[i].Failed)
		}
		outcomes = append(outcomes, state.Outcome())
	}
	return outcomes
}

// AnySucceeded reports whether at least one outcome is a success.
func AnySucceeded(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o == OutcomeSuccess {
			return true
		}
	}
	return false
}

// AnyFinished reports whether at least one outcome is a success or a failure.
func AnyFinished(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Finished() {
			return true
		}
	}
	return false
}
