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

// Package jobs lists the playbook jobs of a cluster and classifies
// their status into an outcome.
package jobs

import (
	"time"

	batchv1 "k8s.io/api/batch/v1"
)

// Record is the observed state of one submitted job.
type Record struct {
	Name      string
	Namespace string
	Labels    map[string]string
	Created   time.Time

	Active    int32
	Succeeded int32
	Failed    int32
}

// RecordFromJob converts a Job to a Record. Counters
// missing from the Job status are zero.
func RecordFromJob(job *batchv1.Job) Record {
	return Record{
		Name:      job.GetName(),
		Namespace: job.GetNamespace(),
		Labels:    job.GetLabels(),
		Created:   job.GetCreationTimestamp().Time,
		Active:    job.Status.Active,
		Succeeded: job.Status.Succeeded,
		Failed:    job.Status.Failed,
	}
}
