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

// Package v1alpha1 contains the Cluster and ClusterType API types
// of the caas.caasctl.dev group.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

const (
	Group   = "caas.caasctl.dev"
	Version = "v1alpha1"

	ClusterKind     = "Cluster"
	ClusterTypeKind = "ClusterType"
)

var (
	// GroupVersion is the group version used to register these objects.
	GroupVersion = schema.GroupVersion{Group: Group, Version: Version}

	// SchemeBuilder is used to add go types to the GroupVersionKind scheme.
	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// AddToScheme adds the types in this group-version to the given scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)

func init() {
	SchemeBuilder.Register(&Cluster{}, &ClusterList{}, &ClusterType{}, &ClusterTypeList{})
}

// ClusterSpec defines the desired state of a Cluster.
type ClusterSpec struct {
	// ClusterTypeName is the name of the ClusterType that provisions this cluster.
	ClusterTypeName string `json:"clusterTypeName"`

	// CloudCredentialsSecretName is the name of the Secret holding the
	// clouds.yaml mounted into the runner.
	CloudCredentialsSecretName string `json:"cloudCredentialsSecretName"`

	// ExtraVars override the ClusterType defaults.
	// +optional
	ExtraVars map[string]string `json:"extraVars,omitempty"`
}

// Cluster is a tenant cluster provisioned by an Ansible playbook.
// +kubebuilder:object:root=true
type Cluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ClusterSpec `json:"spec,omitempty"`
}

// ClusterList contains a list of Cluster.
// +kubebuilder:object:root=true
type ClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Cluster `json:"items"`
}

// ClusterTypeSpec points to the playbook that provisions a class of clusters.
type ClusterTypeSpec struct {
	// GitURL is the repository cloned by the runner.
	GitURL string `json:"gitUrl"`

	// GitVersion is the branch, tag or commit checked out after cloning.
	GitVersion string `json:"gitVersion"`

	// Playbook is the path of the playbook relative to the repository root.
	Playbook string `json:"playbook"`

	// ExtraVars are the default playbook variables.
	// +optional
	ExtraVars map[string]string `json:"extraVars,omitempty"`
}

// ClusterType is a cluster scoped template for Clusters.
// +kubebuilder:object:root=true
// +kubebuilder:resource:scope=Cluster
type ClusterType struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec ClusterTypeSpec `json:"spec,omitempty"`
}

// ClusterTypeList contains a list of ClusterType.
// +kubebuilder:object:root=true
type ClusterTypeList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ClusterType `json:"items"`
}
