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

import (
	"context"
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/stefanprodan/caasctl/pkg/api/v1alpha1"
	"github.com/stefanprodan/caasctl/pkg/jobs"
	"github.com/stefanprodan/caasctl/pkg/manifest"
	"github.com/stefanprodan/caasctl/pkg/objectutil"
)

// Manager runs the playbook jobs of clusters.
type Manager struct {
	client   client.Client
	renderer *manifest.Renderer
}

// NewManager creates a Manager for the given Kubernetes client and renderer.
func NewManager(client client.Client, renderer *manifest.Renderer) *Manager {
	return &Manager{
		client:   client,
		renderer: renderer,
	}
}

// Client returns the underlying controller-runtime client.
func (m *Manager) Client() client.Client {
	return m.client
}

// GetCluster retrieves the Cluster with the given name and namespace.
func (m *Manager) GetCluster(ctx context.Context, name, namespace string) (*v1alpha1.Cluster, error) {
	cluster := &v1alpha1.Cluster{}
	if err := m.client.Get(ctx, client.ObjectKey{Name: name, Namespace: namespace}, cluster); err != nil {
		return nil, fmt.Errorf("Cluster/%s/%s query failed, error: %w", namespace, name, err)
	}
	return cluster, nil
}

// GetClusterType retrieves the ClusterType referenced by the given Cluster.
func (m *Manager) GetClusterType(ctx context.Context, cluster *v1alpha1.Cluster) (*v1alpha1.ClusterType, error) {
	name := cluster.Spec.ClusterTypeName
	if name == "" {
		return nil, fmt.Errorf("Cluster/%s/%s has no cluster type", cluster.GetNamespace(), cluster.GetName())
	}

	clusterType := &v1alpha1.ClusterType{}
	if err := m.client.Get(ctx, client.ObjectKey{Name: name}, clusterType); err != nil {
		return nil, fmt.Errorf("ClusterType/%s query failed, error: %w", name, err)
	}
	return clusterType, nil
}

// StartJob applies the parameters ConfigMap of the given action, then
// submits a new Job that mounts it. The ConfigMap is applied first,
// the Job pod can't start without it.
func (m *Manager) StartJob(ctx context.Context, cluster *v1alpha1.Cluster, clusterType *v1alpha1.ClusterType,
	namespace string, action manifest.Action) (*ChangeSet, error) {
	logger := log.FromContext(ctx)

	params, err := m.renderer.RenderParameters(cluster, clusterType, action)
	if err != nil {
		return nil, err
	}
	params.SetNamespace(namespace)

	job, err := m.renderer.RenderJob(cluster, clusterType, action)
	if err != nil {
		return nil, err
	}
	job.SetNamespace(namespace)

	changeSet := NewChangeSet()

	entry, err := m.applyParameters(ctx, params)
	if err != nil {
		return nil, err
	}
	changeSet.Add(*entry)

	if err := m.client.Create(ctx, job); err != nil {
		return changeSet, fmt.Errorf("%s create failed, error: %w",
			objectutil.FmtObject("Job", job), err)
	}
	changeSet.Add(ChangeSetEntry{
		Subject: objectutil.FmtObject("Job", job),
		Action:  string(CreatedAction),
	})

	logger.Info("job submitted", "job", job.GetName(), "action", action, "cluster", cluster.GetName())
	return changeSet, nil
}

// applyParameters creates the ConfigMap or replaces its labels,
// owner references and data with the rendered ones.
func (m *Manager) applyParameters(ctx context.Context, desired *corev1.ConfigMap) (*ChangeSetEntry, error) {
	existing := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      desired.GetName(),
			Namespace: desired.GetNamespace(),
		},
	}

	result, err := controllerutil.CreateOrUpdate(ctx, m.client, existing, func() error {
		existing.SetLabels(desired.GetLabels())
		existing.SetOwnerReferences(desired.GetOwnerReferences())
		existing.Data = desired.Data
		existing.BinaryData = nil
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s apply failed, error: %w",
			objectutil.FmtObject("ConfigMap", desired), err)
	}

	var action Action
	switch result {
	case controllerutil.OperationResultCreated:
		action = CreatedAction
	case controllerutil.OperationResultNone:
		action = UnchangedAction
	default:
		action = ConfiguredAction
	}

	return &ChangeSetEntry{
		Subject: objectutil.FmtObject("ConfigMap", desired),
		Action:  string(action),
	}, nil
}

// EnsureCreateFinished checks that at least one create job of the cluster
// has finished. It returns ErrNoCreateJob if no create job was submitted
// and ErrCreateJobRunning while none of them has finished.
//
// A finished job is not necessarily a successful one, the returned outcome
// is OutcomeSuccess if any create job succeeded and OutcomeFailure otherwise.
func (m *Manager) EnsureCreateFinished(ctx context.Context, clusterName, namespace string) (jobs.Outcome, error) {
	logger := log.FromContext(ctx)

	records, err := jobs.List(ctx, m.client, namespace, clusterName, manifest.CreateAction)
	if err != nil {
		return jobs.OutcomeNone, err
	}

	if len(records) == 0 {
		logger.Info("can't find any create jobs", "cluster", clusterName, "namespace", namespace)
		return jobs.OutcomeNone, fmt.Errorf("%w for %s/%s", ErrNoCreateJob, namespace, clusterName)
	}

	outcomes := jobs.ClassifyAll(ctx, records)
	switch {
	case jobs.AnySucceeded(outcomes):
		return jobs.OutcomeSuccess, nil
	case jobs.AnyFinished(outcomes):
		return jobs.OutcomeFailure, nil
	}

	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Name)
	}
	sort.Strings(names)

	return jobs.OutcomeUnknown, fmt.Errorf("%w: %s", ErrCreateJobRunning, strings.Join(names, ", "))
}

// GetDeleteStatus returns the outcome of every remove job of the cluster,
// the caller decides how to fold multiple attempts.
func (m *Manager) GetDeleteStatus(ctx context.Context, clusterName, namespace string) ([]jobs.Outcome, error) {
	records, err := jobs.List(ctx, m.client, namespace, clusterName, manifest.RemoveAction)
	if err != nil {
		return nil, err
	}

	return jobs.ClassifyAll(ctx, records), nil
}

// JobState pairs a job record with its classification.
type JobState struct {
	jobs.Record
	Action manifest.Action
	State  jobs.State
}

// ListJobs returns the jobs of the cluster for the given actions,
// ordered by creation time.
func (m *Manager) ListJobs(ctx context.Context, clusterName, namespace string, actions ...manifest.Action) ([]JobState, error) {
	var states []JobState
	for _, action := range actions {
		records, err := jobs.List(ctx, m.client, namespace, clusterName, action)
		if err != nil {
			return nil, err
		}
		for i := range records {
			states = append(states, JobState{
				Record: records[i],
				Action: action,
				State:  jobs.Classify(&records[i]),
			})
		}
	}

	sort.SliceStable(states, func(i, j int) bool {
		if states[i].Created.Equal(states[j].Created) {
			return states[i].Name < states[j].Name
		}
		return states[i].Created.Before(states[j].Created)
	})

	return states, nil
}
