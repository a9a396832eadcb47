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

package lifecycle

import "errors"

var (
	// ErrNoCreateJob means the create job of a cluster was never submitted.
	ErrNoCreateJob = errors.New("no create job found")

	// ErrCreateJobRunning means the create jobs have not finished yet, retry later.
	ErrCreateJobRunning = errors.New("waiting for create job to finish")
)

// IsWaiting reports whether the error is transient and the call should be retried later.
func IsWaiting(err error) bool {
	return errors.Is(err, ErrCreateJobRunning)
}
