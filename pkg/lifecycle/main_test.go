package lifecycle

import (
	"context"
	"sync"

	"github.com/google/uuid"
	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	apiruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/stefanprodan/caasctl/pkg/api/v1alpha1"
	"github.com/stefanprodan/caasctl/pkg/config"
	"github.com/stefanprodan/caasctl/pkg/manifest"
	"github.com/stefanprodan/caasctl/pkg/objectutil"
)

func newScheme() *apiruntime.Scheme {
	scheme := apiruntime.NewScheme()
	_ = clientgoscheme.AddToScheme(scheme)
	_ = v1alpha1.AddToScheme(scheme)
	return scheme
}

// recordingClient records the writes performed through it.
type recordingClient struct {
	client.Client
	mu     sync.Mutex
	writes []string
}

func (c *recordingClient) Create(ctx context.Context, obj client.Object, opts ...client.CreateOption) error {
	c.record("create", obj)
	return c.Client.Create(ctx, obj, opts...)
}

func (c *recordingClient) Update(ctx context.Context, obj client.Object, opts ...client.UpdateOption) error {
	c.record("update", obj)
	return c.Client.Update(ctx, obj, opts...)
}

func (c *recordingClient) record(verb string, obj client.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var kind string
	switch obj.(type) {
	case *batchv1.Job:
		kind = "Job"
	default:
		kind = "ConfigMap"
	}
	c.writes = append(c.writes, verb+" "+objectutil.FmtObject(kind, obj))
}

func newTestManager(objects ...client.Object) (*Manager, *recordingClient) {
	kubeClient := &recordingClient{
		Client: fake.NewClientBuilder().WithScheme(newScheme()).WithObjects(objects...).Build(),
	}
	return NewManager(kubeClient, manifest.NewRenderer(config.NewConfig())), kubeClient
}

func newTestCluster(name, namespace string) *v1alpha1.Cluster {
	return &v1alpha1.Cluster{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			UID:       types.UID(uuid.NewString()),
		},
		Spec: v1alpha1.ClusterSpec{
			ClusterTypeName:            "quick",
			CloudCredentialsSecretName: name + "-clouds",
		},
	}
}

func newTestClusterType() *v1alpha1.ClusterType {
	return &v1alpha1.ClusterType{
		ObjectMeta: metav1.ObjectMeta{Name: "quick"},
		Spec: v1alpha1.ClusterTypeSpec{
			GitURL:     "https://github.com/stackhpc/caas-playbooks.git",
			GitVersion: "main",
			Playbook:   "deploy.yml",
		},
	}
}

func newJob(name, namespace, cluster string, action manifest.Action, status batchv1.JobStatus) *batchv1.Job {
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    manifest.JobLabels(cluster, action),
		},
		Status: status,
	}
}
