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
	"io"
	"os"

	"github.com/fluxcd/pkg/ssa"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/stefanprodan/caasctl/pkg/api/v1alpha1"
	"github.com/stefanprodan/caasctl/pkg/manifest"
	"github.com/stefanprodan/caasctl/pkg/objectutil"
)

var renderCmd = &cobra.Command{
	Use:   "render [cluster name]",
	Short: "Render prints the parameters ConfigMap and the Job of a cluster without submitting them.",
	Example: `  # Render the create job from a file containing the Cluster and its ClusterType
  caasctl render db1 -f ./db1.yaml --action create

  # Render the remove job reading the objects from stdin
  cat db1.yaml | caasctl render db1 -f - --action remove
`,
	Args: cobra.ExactArgs(1),
	RunE: runRenderCmd,
}

type renderFlags struct {
	filename string
	action   string
}

var renderArgs renderFlags

func init() {
	renderCmd.Flags().StringVarP(&renderArgs.filename, "filename", "f", "",
		"Path to a multi-doc YAML file that contains the Cluster and the ClusterType, use '-' to read from stdin.")
	renderCmd.Flags().StringVar(&renderArgs.action, "action", string(manifest.CreateAction),
		"The playbook action, one of: create, remove.")

	rootCmd.AddCommand(renderCmd)
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	if renderArgs.filename == "" {
		return fmt.Errorf("-f is required")
	}

	action, err := manifest.ParseAction(renderArgs.action)
	if err != nil {
		return err
	}

	var data []byte
	if renderArgs.filename == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(renderArgs.filename)
	}
	if err != nil {
		return err
	}

	objects, err := objectutil.ReadObjects(bytes.NewReader(data))
	if err != nil {
		return err
	}

	cluster, clusterType, err := findCluster(objects, name)
	if err != nil {
		return err
	}
	if cluster.GetNamespace() == "" {
		cluster.SetNamespace(*kubeconfigArgs.Namespace)
	}

	renderer := manifest.NewRenderer(cfg)

	params, err := renderer.RenderParameters(cluster, clusterType, action)
	if err != nil {
		return err
	}

	job, err := renderer.RenderJob(cluster, clusterType, action)
	if err != nil {
		return err
	}

	paramsObj, err := objectutil.ToUnstructured(params)
	if err != nil {
		return err
	}

	jobObj, err := objectutil.ToUnstructured(job)
	if err != nil {
		return err
	}

	yml, err := objectutil.ObjectsToYAML([]*unstructured.Unstructured{paramsObj, jobObj})
	if err != nil {
		return err
	}

	rootCmd.Print(yml)
	return nil
}

// findCluster returns the named Cluster and the ClusterType it references.
func findCluster(objects []*unstructured.Unstructured, name string) (*v1alpha1.Cluster, *v1alpha1.ClusterType, error) {
	var cluster *v1alpha1.Cluster
	for _, obj := range objects {
		if obj.GetKind() == v1alpha1.ClusterKind && obj.GetName() == name {
			cluster = &v1alpha1.Cluster{}
			if err := objectutil.FromUnstructured(obj, cluster); err != nil {
				return nil, nil, fmt.Errorf("decoding %s failed, error: %w", ssa.FmtUnstructured(obj), err)
			}
			break
		}
	}
	if cluster == nil {
		return nil, nil, fmt.Errorf("%s '%s' not found", v1alpha1.ClusterKind, name)
	}

	typeName := cluster.Spec.ClusterTypeName
	for _, obj := range objects {
		if obj.GetKind() == v1alpha1.ClusterTypeKind && obj.GetName() == typeName {
			clusterType := &v1alpha1.ClusterType{}
			if err := objectutil.FromUnstructured(obj, clusterType); err != nil {
				return nil, nil, fmt.Errorf("decoding %s failed, error: %w", ssa.FmtUnstructured(obj), err)
			}
			return cluster, clusterType, nil
		}
	}

	return nil, nil, fmt.Errorf("%s '%s' referenced by %s '%s' not found",
		v1alpha1.ClusterTypeKind, typeName, v1alpha1.ClusterKind, name)
}
