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

// Package lifecycle starts cluster playbook jobs and reports on their outcome.
//
// The Manager performs the following actions:
// - applies the parameters ConfigMap of a run, replacing any previous content
// - submits a new Job for every run, the Job name is generated by the API server
// - checks if the create jobs of a cluster have finished
// - reports the outcome of every remove job of a cluster
//
// The Manager doesn't serialise StartJob calls, two concurrent calls for
// the same cluster and action submit two jobs.
package lifecycle
