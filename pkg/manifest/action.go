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

// Package manifest renders the ConfigMap and Job that run a cluster playbook.
//
// The ConfigMap holds the ansible-runner extravars and envvars and has the
// deterministic name <cluster>-<action>, so it can be applied repeatedly.
// The Job has no name, only a generateName prefix, every submission
// creates a new attempt. The Job mounts the ConfigMap by name, the
// ConfigMap must exist before the Job is created.
package manifest

import (
	"fmt"
)

// Action is the playbook run mode.
type Action string

const (
	CreateAction Action = "create"
	RemoveAction Action = "remove"
)

const (
	// ClusterLabelKey selects the jobs of a cluster.
	ClusterLabelKey = "caasctl.dev/cluster"
	// ActionLabelKey selects the jobs of an action.
	ActionLabelKey = "caasctl.dev/action"

	ExtraVarsKey = "extravars"
	EnvVarsKey   = "envvars"
)

// ParseAction returns the Action for the given string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case CreateAction, RemoveAction:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action '%s', must be one of: %s, %s", s, CreateAction, RemoveAction)
	}
}

func (a Action) String() string {
	return string(a)
}

// ParametersName returns the name of the parameters ConfigMap.
func ParametersName(clusterName string, action Action) string {
	return fmt.Sprintf("%s-%s", clusterName, action)
}

// JobLabels returns the labels set on the jobs of the given cluster and action.
func JobLabels(clusterName string, action Action) map[string]string {
	return map[string]string{
		ClusterLabelKey: clusterName,
		ActionLabelKey:  string(action),
	}
}
