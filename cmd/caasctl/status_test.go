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
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
	batchv1 "k8s.io/api/batch/v1"

	"github.com/stefanprodan/caasctl/pkg/manifest"
)

func TestStatus(t *testing.T) {
	g := NewWithT(t)
	id := "status-" + randStringRunes(5)
	namespace := "tenant1"

	useFakeClient(
		newTestJob(id+"-create-aaaaa", namespace, id, manifest.CreateAction, batchv1.JobStatus{Failed: 1}),
		newTestJob(id+"-create-bbbbb", namespace, id, manifest.CreateAction, batchv1.JobStatus{Succeeded: 1}),
		newTestJob(id+"-remove-ccccc", namespace, id, manifest.RemoveAction, batchv1.JobStatus{Active: 1}),
	)

	t.Run("lists jobs", func(t *testing.T) {
		output, err := executeCommand(fmt.Sprintf("status %s -n %s", id, namespace))

		g.Expect(err).NotTo(HaveOccurred())
		t.Logf("\n%s", output)
		g.Expect(output).To(MatchRegexp(fmt.Sprintf(`%s-create-aaaaa\s+create\s+0\s+0\s+1\s+Failed`, id)))
		g.Expect(output).To(MatchRegexp(fmt.Sprintf(`%s-create-bbbbb\s+create\s+0\s+1\s+0\s+Succeeded`, id)))
		g.Expect(output).To(MatchRegexp(fmt.Sprintf(`%s-remove-ccccc\s+remove\s+1\s+0\s+0\s+Running`, id)))
	})

	t.Run("reports no jobs", func(t *testing.T) {
		output, err := executeCommand(fmt.Sprintf("status %s -n tenant2", id))

		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(output).To(ContainSubstring("no jobs found"))
	})
}
