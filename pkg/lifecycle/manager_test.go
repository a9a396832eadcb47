package lifecycle

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/stefanprodan/caasctl/pkg/jobs"
	"github.com/stefanprodan/caasctl/pkg/manifest"
)

func TestStartJob(t *testing.T) {
	ctx := context.Background()
	manager, recorder := newTestManager()
	cluster := newTestCluster("db1", "tenant1")
	clusterType := newTestClusterType()

	t.Run("applies the parameters before the job", func(t *testing.T) {
		changeSet, err := manager.StartJob(ctx, cluster, clusterType, "tenant1", manifest.CreateAction)
		if err != nil {
			t.Fatal(err)
		}

		expectedWrites := []string{
			"create ConfigMap/tenant1/db1-create",
		}
		if diff := cmp.Diff(expectedWrites, recorder.writes[:1]); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
		if len(recorder.writes) != 2 || !strings.HasPrefix(recorder.writes[1], "create Job/tenant1/db1-create-") {
			t.Errorf("expected the job to be created second, got %v", recorder.writes)
		}

		if changeSet.Entries[0].String() != "ConfigMap/tenant1/db1-create created" {
			t.Errorf("unexpected entry %s", changeSet.Entries[0])
		}
		if changeSet.Entries[1].Action != string(CreatedAction) {
			t.Errorf("unexpected entry %s", changeSet.Entries[1])
		}
	})

	t.Run("labels the job", func(t *testing.T) {
		list := &batchv1.JobList{}
		if err := manager.Client().List(ctx, list, client.InNamespace("tenant1")); err != nil {
			t.Fatal(err)
		}
		if len(list.Items) != 1 {
			t.Fatalf("expected one job, got %d", len(list.Items))
		}
		expected := map[string]string{
			manifest.ClusterLabelKey: "db1",
			manifest.ActionLabelKey:  "create",
		}
		if diff := cmp.Diff(expected, list.Items[0].GetLabels()); diff != "" {
			t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
		}
	})

	t.Run("is idempotent for the parameters", func(t *testing.T) {
		changeSet, err := manager.StartJob(ctx, cluster, clusterType, "tenant1", manifest.CreateAction)
		if err != nil {
			t.Fatal(err)
		}
		if changeSet.Entries[0].Action != string(UnchangedAction) {
			t.Errorf("expected the ConfigMap to be unchanged, got %s", changeSet.Entries[0])
		}

		list := &batchv1.JobList{}
		if err := manager.Client().List(ctx, list, client.InNamespace("tenant1")); err != nil {
			t.Fatal(err)
		}
		if len(list.Items) != 2 {
			t.Errorf("expected a new job per call, got %d", len(list.Items))
		}
	})

	t.Run("starts remove jobs", func(t *testing.T) {
		_, err := manager.StartJob(ctx, cluster, clusterType, "tenant1", manifest.RemoveAction)
		if err != nil {
			t.Fatal(err)
		}

		cm := &corev1.ConfigMap{}
		if err := manager.Client().Get(ctx, client.ObjectKey{Name: "db1-remove", Namespace: "tenant1"}, cm); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(cm.Data[manifest.ExtraVarsKey], "cluster_state: absent") {
			t.Errorf("expected the remove parameters, got:\n%s", cm.Data[manifest.ExtraVarsKey])
		}

		records, err := jobs.List(ctx, manager.Client(), "tenant1", "db1", manifest.RemoveAction)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 1 {
			t.Errorf("expected one remove job, got %d", len(records))
		}
	})
}

func TestStartJobReplacesParameters(t *testing.T) {
	ctx := context.Background()
	stale := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "db1-create",
			Namespace: "tenant1",
			Labels:    map[string]string{"stale": "true"},
		},
		Data: map[string]string{"extravars": "---\nflavor: tiny\n", "leftover": "x"},
	}
	manager, _ := newTestManager(stale)

	changeSet, err := manager.StartJob(ctx, newTestCluster("db1", "tenant1"), newTestClusterType(), "tenant1", manifest.CreateAction)
	if err != nil {
		t.Fatal(err)
	}
	if changeSet.Entries[0].Action != string(ConfiguredAction) {
		t.Errorf("expected the ConfigMap to be configured, got %s", changeSet.Entries[0])
	}

	cm := &corev1.ConfigMap{}
	if err := manager.Client().Get(ctx, client.ObjectKey{Name: "db1-create", Namespace: "tenant1"}, cm); err != nil {
		t.Fatal(err)
	}
	if _, ok := cm.Data["leftover"]; ok {
		t.Error("expected the stale data to be replaced")
	}
	if _, ok := cm.GetLabels()["stale"]; ok {
		t.Error("expected the stale labels to be replaced")
	}
	if len(cm.GetOwnerReferences()) != 1 || cm.GetOwnerReferences()[0].Name != "db1" {
		t.Errorf("expected the cluster owner reference, got %v", cm.GetOwnerReferences())
	}
}

func TestStartJobValidation(t *testing.T) {
	manager, recorder := newTestManager()
	clusterType := newTestClusterType()
	clusterType.Spec.Playbook = ""

	_, err := manager.StartJob(context.Background(), newTestCluster("db1", "tenant1"), clusterType, "tenant1", manifest.CreateAction)
	if !errors.Is(err, manifest.ErrInvalidInput) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if len(recorder.writes) != 0 {
		t.Errorf("expected no writes, got %v", recorder.writes)
	}
}

func TestEnsureCreateFinished(t *testing.T) {
	tests := []struct {
		name     string
		objects  []client.Object
		outcome  jobs.Outcome
		sentinel error
	}{
		{
			name:     "no create jobs",
			objects:  []client.Object{newJob("db1-remove-aaaaa", "tenant1", "db1", manifest.RemoveAction, batchv1.JobStatus{Succeeded: 1})},
			outcome:  jobs.OutcomeNone,
			sentinel: ErrNoCreateJob,
		},
		{
			name: "all pending or running",
			objects: []client.Object{
				newJob("db1-create-aaaaa", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Active: 1}),
				newJob("db1-create-bbbbb", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{}),
				newJob("db1-create-ccccc", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Active: 2}),
			},
			outcome:  jobs.OutcomeUnknown,
			sentinel: ErrCreateJobRunning,
		},
		{
			name: "one succeeded and one running",
			objects: []client.Object{
				newJob("db1-create-aaaaa", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Succeeded: 1}),
				newJob("db1-create-bbbbb", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Active: 1}),
			},
			outcome: jobs.OutcomeSuccess,
		},
		{
			name: "one failed",
			objects: []client.Object{
				newJob("db1-create-aaaaa", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Failed: 1}),
			},
			outcome: jobs.OutcomeFailure,
		},
		{
			name: "failed then succeeded",
			objects: []client.Object{
				newJob("db1-create-aaaaa", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Failed: 1}),
				newJob("db1-create-bbbbb", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Succeeded: 1}),
			},
			outcome: jobs.OutcomeSuccess,
		},
		{
			name: "jobs of other clusters",
			objects: []client.Object{
				newJob("db2-create-aaaaa", "tenant1", "db2", manifest.CreateAction, batchv1.JobStatus{Succeeded: 1}),
				newJob("db1-create-bbbbb", "tenant2", "db1", manifest.CreateAction, batchv1.JobStatus{Succeeded: 1}),
			},
			outcome:  jobs.OutcomeNone,
			sentinel: ErrNoCreateJob,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, _ := newTestManager(tt.objects...)

			outcome, err := manager.EnsureCreateFinished(context.Background(), "db1", "tenant1")
			if tt.sentinel == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			if outcome != tt.outcome {
				t.Errorf("expected outcome %s, got %s", tt.outcome, outcome)
			}
			if IsWaiting(err) != (tt.sentinel == ErrCreateJobRunning) {
				t.Errorf("unexpected IsWaiting result for %v", err)
			}
		})
	}
}

func TestGetDeleteStatus(t *testing.T) {
	manager, _ := newTestManager(
		newJob("db1-remove-aaaaa", "tenant1", "db1", manifest.RemoveAction, batchv1.JobStatus{Active: 1}),
		newJob("db1-remove-bbbbb", "tenant1", "db1", manifest.RemoveAction, batchv1.JobStatus{Succeeded: 1}),
		newJob("db1-remove-ccccc", "tenant1", "db1", manifest.RemoveAction, batchv1.JobStatus{Failed: 1}),
		newJob("db1-create-ddddd", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Succeeded: 1}),
	)
	ctx := context.Background()

	outcomes, err := manager.GetDeleteStatus(ctx, "db1", "tenant1")
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, o := range outcomes {
		got = append(got, o.String())
	}
	sort.Strings(got)
	if diff := cmp.Diff([]string{"Failure", "Success", "Unknown"}, got); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	expected := map[jobs.Outcome]*bool{
		jobs.OutcomeUnknown: nil,
		jobs.OutcomeSuccess: boolPtr(true),
		jobs.OutcomeFailure: boolPtr(false),
	}
	for _, o := range outcomes {
		if diff := cmp.Diff(expected[o], o.Value()); diff != "" {
			t.Errorf("%s: mismatch from expected value (-want +got):\n%s", o, diff)
		}
	}

	if !jobs.AnySucceeded(outcomes) {
		t.Error("expected at least one successful remove job")
	}

	t.Run("returns no outcomes without remove jobs", func(t *testing.T) {
		outcomes, err := manager.GetDeleteStatus(ctx, "db2", "tenant1")
		if err != nil {
			t.Fatal(err)
		}
		if len(outcomes) != 0 {
			t.Errorf("expected no outcomes, got %v", outcomes)
		}
	})
}

func TestGetClusterType(t *testing.T) {
	cluster := newTestCluster("db1", "tenant1")
	manager, _ := newTestManager(cluster, newTestClusterType())
	ctx := context.Background()

	got, err := manager.GetCluster(ctx, "db1", "tenant1")
	if err != nil {
		t.Fatal(err)
	}

	clusterType, err := manager.GetClusterType(ctx, got)
	if err != nil {
		t.Fatal(err)
	}
	if clusterType.Spec.Playbook != "deploy.yml" {
		t.Errorf("expected playbook deploy.yml, got %s", clusterType.Spec.Playbook)
	}

	got.Spec.ClusterTypeName = "missing"
	if _, err := manager.GetClusterType(ctx, got); !apierrors.IsNotFound(err) {
		t.Errorf("expected a not found error, got %v", err)
	}

	if _, err := manager.GetCluster(ctx, "db2", "tenant1"); !apierrors.IsNotFound(err) {
		t.Errorf("expected a not found error, got %v", err)
	}
}

func TestListJobs(t *testing.T) {
	manager, _ := newTestManager(
		newJob("db1-create-aaaaa", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Failed: 1}),
		newJob("db1-create-bbbbb", "tenant1", "db1", manifest.CreateAction, batchv1.JobStatus{Succeeded: 1}),
		newJob("db1-remove-ccccc", "tenant1", "db1", manifest.RemoveAction, batchv1.JobStatus{Active: 1}),
	)

	states, err := manager.ListJobs(context.Background(), "db1", "tenant1", manifest.CreateAction, manifest.RemoveAction)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, s := range states {
		got = append(got, s.Name+" "+string(s.Action)+" "+s.State.String())
	}
	expected := []string{
		"db1-create-aaaaa create Failed",
		"db1-create-bbbbb create Succeeded",
		"db1-remove-ccccc remove Running",
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
