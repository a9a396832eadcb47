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


package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"
	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/stefanprodan/caasctl/pkg/api/v1alpha1"
	"github.com/stefanprodan/caasctl/pkg/manifest"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

type TestFile struct {
	Name string
	Body string
}

func makeTestDir(dir string, files []TestFile) error {
	for _, file := range files {
		if err := os.WriteFile(filepath.Join(dir, file.Name), []byte(file.Body), 0644); err != nil {
			return err
		}
	}
	return nil
}

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz1234567890")

func randStringRunes(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

// useFakeClient makes the commands use a fake client seeded with the given objects.
func useFakeClient(objects ...client.Object) client.Client {
	kubeClient := fake.NewClientBuilder().
		WithScheme(newScheme()).
		WithObjects(objects...).
		Build()

	kubeClientFactory = func(_ genericclioptions.RESTClientGetter) (client.Client, error) {
		return kubeClient, nil
	}
	return kubeClient
}

func executeCommand(cmd string) (string, error) {
	defer resetCmdArgs()
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)

	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	logger = newLogger(rootCmd.ErrOrStderr())

	_, err = rootCmd.ExecuteC()
	result := buf.String()

	return result, err
}

func resetCmdArgs() {
	rootArgs = rootFlags{timeout: time.Minute, logLevel: "info"}
	*kubeconfigArgs.Namespace = "default"
	renderArgs = renderFlags{action: string(manifest.CreateAction)}
	startArgs = startFlags{action: string(manifest.CreateAction)}
	waitArgs = waitFlags{interval: 5 * time.Second}
	installArgs = installFlags{}
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
			ExtraVars:                  map[string]string{"flavor": "small"},
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

func newTestJob(name, namespace, cluster string, action manifest.Action, status batchv1.JobStatus) *batchv1.Job {
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    manifest.JobLabels(cluster, action),
		},
		Status: status,
	}
}

var testManifests = func(name, namespace, clusterType string) []TestFile {
	return []TestFile{
		{
			Name: "cluster.yaml",
			Body: fmt.Sprintf(`---
apiVersion: caas.caasctl.dev/v1alpha1
kind: Cluster
metadata:
  name: "%[1]s"
  namespace: "%[2]s"
  uid: "%[4]s"
spec:
  clusterTypeName: "%[3]s"
  cloudCredentialsSecretName: "%[1]s-clouds"
  extraVars:
    flavor: small
---
apiVersion: caas.caasctl.dev/v1alpha1
kind: ClusterType
metadata:
  name: quick
spec:
  gitUrl: https://github.com/stackhpc/caas-playbooks.git
  gitVersion: main
  playbook: deploy.yml
  extraVars:
    flavor: tiny
    image: ubuntu-jammy
`, name, namespace, clusterType, uuid.NewString()),
		},
	}
}
