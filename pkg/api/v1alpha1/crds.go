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

package v1alpha1

import (
	"bytes"
	"embed"
	"fmt"
	"path"

	"github.com/fluxcd/pkg/ssa"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

//go:embed crds/*.yaml
var crdFS embed.FS

// CRDs returns the CustomResourceDefinitions of the Cluster and ClusterType kinds.
func CRDs() ([]*unstructured.Unstructured, error) {
	files, err := crdFS.ReadDir("crds")
	if err != nil {
		return nil, err
	}

	var objects []*unstructured.Unstructured
	for _, file := range files {
		data, err := crdFS.ReadFile(path.Join("crds", file.Name()))
		if err != nil {
			return nil, err
		}
		objs, err := ssa.ReadObjects(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding %s failed, error: %w", file.Name(), err)
		}
		objects = append(objects, objs...)
	}

	return objects, nil
}
