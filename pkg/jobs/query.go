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
	"fmt"

	batchv1 "k8s.io/api/batch/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/stefanprodan/caasctl/pkg/manifest"
)

// List returns the records of the jobs labeled with the given cluster name and action.
func List(ctx context.Context, reader client.Reader, namespace, clusterName string, action manifest.Action) ([]Record, error) {
	list := &batchv1.JobList{}
	err := reader.List(ctx, list,
		client.InNamespace(namespace),
		client.MatchingLabels(manifest.JobLabels(clusterName, action)),
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s jobs for %s/%s failed, error: %w", action, namespace, clusterName, err)
	}

	records := make([]Record, 0, len(list.Items))
	for i := range list.Items {
		records = append(records, RecordFromJob(&list.Items[i]))
	}
	return records, nil
}
