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

package manifest

import (
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/stefanprodan/caasctl/pkg/api/v1alpha1"
	"github.com/stefanprodan/caasctl/pkg/config"
)

// Injected playbook variables, these can't be overridden by extraVars.
const (
	ClusterNameVar     = "cluster_name"
	ClusterIDVar       = "cluster_id"
	ClusterTypeVar     = "cluster_type"
	SSHPublicKeyVar    = "cluster_deploy_ssh_public_key"
	SSHPrivateKeyVar   = "cluster_ssh_private_key_file"
	ClusterStateVar    = "cluster_state"
	ClusterStateAbsent = "absent"
)

const (
	playbooksVolume  = "playbooks"
	inventoryVolume  = "inventory"
	envVolume        = "env"
	cloudCredsVolume = "cloudcreds"
	sshVolume        = "ssh"

	inventoryScript = "echo '[openstack]' >/inventory/hosts; " +
		"echo 'localhost ansible_connection=local ansible_python_interpreter=/usr/bin/python3' >>/inventory/hosts"
	runScript = "ansible-galaxy install -r /runner/project/roles/requirements.yml; ansible-runner run /runner -j"
)

// Renderer builds the Kubernetes objects of a playbook run.
type Renderer struct {
	cfg *config.Config
}

// NewRenderer returns a Renderer for the given config.
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// ExtraVars returns the playbook variables of a run. The ClusterType
// defaults are overridden by the Cluster values, the injected
// variables override both.
func (r *Renderer) ExtraVars(cluster *v1alpha1.Cluster, clusterType *v1alpha1.ClusterType, action Action) map[string]string {
	vars := make(map[string]string, len(clusterType.Spec.ExtraVars)+len(cluster.Spec.ExtraVars)+6)
	for k, v := range clusterType.Spec.ExtraVars {
		vars[k] = v
	}
	for k, v := range cluster.Spec.ExtraVars {
		vars[k] = v
	}

	vars[ClusterNameVar] = cluster.GetName()
	vars[ClusterIDVar] = string(cluster.GetUID())
	vars[ClusterTypeVar] = clusterType.GetName()
	vars[SSHPublicKeyVar] = r.cfg.SSHKey.PublicKey
	vars[SSHPrivateKeyVar] = r.cfg.SSHKey.PrivateKeyPath

	if action == RemoveAction {
		vars[ClusterStateVar] = ClusterStateAbsent
	}

	return vars
}

// RenderParameters returns the ConfigMap mounted as the runner env dir.
func (r *Renderer) RenderParameters(cluster *v1alpha1.Cluster, clusterType *v1alpha1.ClusterType, action Action) (*corev1.ConfigMap, error) {
	if err := validateInput(newRenderInput(cluster, clusterType, action)); err != nil {
		return nil, err
	}

	extraVars, err := toYAMLDocument(r.ExtraVars(cluster, clusterType, action))
	if err != nil {
		return nil, err
	}

	envVars, err := toYAMLDocument(r.cfg.Environment)
	if err != nil {
		return nil, err
	}

	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            ParametersName(cluster.GetName(), action),
			Namespace:       cluster.GetNamespace(),
			Labels:          JobLabels(cluster.GetName(), action),
			OwnerReferences: []metav1.OwnerReference{ownerReference(cluster)},
		},
		Data: map[string]string{
			ExtraVarsKey: extraVars,
			EnvVarsKey:   envVars,
		},
	}, nil
}

// RenderJob returns a Job that runs the ClusterType playbook.
// The Job name is generated by the API server.
func (r *Renderer) RenderJob(cluster *v1alpha1.Cluster, clusterType *v1alpha1.ClusterType, action Action) (*batchv1.Job, error) {
	if err := validateInput(newRenderInput(cluster, clusterType, action)); err != nil {
		return nil, err
	}

	backoffLimit := int32(0)
	sshKeyMode := int32(0400)
	labels := JobLabels(cluster.GetName(), action)

	repoMount := []corev1.VolumeMount{{Name: playbooksVolume, MountPath: "/repo"}}

	return &batchv1.Job{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "batch/v1",
			Kind:       "Job",
		},
		ObjectMeta: metav1.ObjectMeta{
			GenerateName:    ParametersName(cluster.GetName(), action) + "-",
			Namespace:       cluster.GetNamespace(),
			Labels:          labels,
			OwnerReferences: []metav1.OwnerReference{ownerReference(cluster)},
		},
		Spec: batchv1.JobSpec{
			BackoffLimit: &backoffLimit,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels,
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyNever,
					InitContainers: []corev1.Container{
						{
							Name:         "clone",
							Image:        r.cfg.Runner.GitImage,
							Command:      []string{"git", "clone", clusterType.Spec.GitURL, "/repo"},
							VolumeMounts: repoMount,
						},
						{
							Name:         "checkout",
							Image:        r.cfg.Runner.GitImage,
							WorkingDir:   "/repo",
							Command:      []string{"git", "checkout", clusterType.Spec.GitVersion},
							VolumeMounts: repoMount,
						},
						{
							Name:         "permissions",
							Image:        r.cfg.Runner.GitImage,
							WorkingDir:   "/repo",
							Command:      []string{"/bin/ash", "-c", "chmod 755 /repo/"},
							VolumeMounts: repoMount,
						},
						{
							Name:       "inventory",
							Image:      r.cfg.Runner.GitImage,
							WorkingDir: "/inventory",
							Command:    []string{"/bin/ash", "-c", inventoryScript},
							VolumeMounts: []corev1.VolumeMount{
								{Name: inventoryVolume, MountPath: "/inventory"},
							},
						},
					},
					Containers: []corev1.Container{
						{
							Name:    "run",
							Image:   r.cfg.Runner.Image,
							Command: []string{"/bin/bash", "-c", runScript},
							Env: []corev1.EnvVar{
								{Name: "RUNNER_PLAYBOOK", Value: clusterType.Spec.Playbook},
							},
							VolumeMounts: []corev1.VolumeMount{
								{Name: playbooksVolume, MountPath: "/runner/project"},
								{Name: inventoryVolume, MountPath: "/runner/inventory"},
								{Name: envVolume, MountPath: "/runner/env"},
								{Name: cloudCredsVolume, MountPath: "/openstack"},
								{Name: sshVolume, MountPath: "/runner/ssh"},
							},
						},
					},
					Volumes: []corev1.Volume{
						{
							Name:         playbooksVolume,
							VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}},
						},
						{
							Name:         inventoryVolume,
							VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}},
						},
						{
							Name: envVolume,
							VolumeSource: corev1.VolumeSource{
								ConfigMap: &corev1.ConfigMapVolumeSource{
									LocalObjectReference: corev1.LocalObjectReference{
										Name: ParametersName(cluster.GetName(), action),
									},
								},
							},
						},
						{
							Name: cloudCredsVolume,
							VolumeSource: corev1.VolumeSource{
								Secret: &corev1.SecretVolumeSource{
									SecretName: cluster.Spec.CloudCredentialsSecretName,
								},
							},
						},
						{
							Name: sshVolume,
							VolumeSource: corev1.VolumeSource{
								Secret: &corev1.SecretVolumeSource{
									SecretName:  r.cfg.SSHKey.SecretName,
									DefaultMode: &sshKeyMode,
								},
							},
						},
					},
				},
			},
		},
	}, nil
}

func newRenderInput(cluster *v1alpha1.Cluster, clusterType *v1alpha1.ClusterType, action Action) renderInput {
	return renderInput{
		ClusterName:       cluster.GetName(),
		ClusterUID:        string(cluster.GetUID()),
		CredentialsSecret: cluster.Spec.CloudCredentialsSecretName,
		ClusterTypeName:   clusterType.GetName(),
		GitURL:            clusterType.Spec.GitURL,
		GitVersion:        clusterType.Spec.GitVersion,
		Playbook:          clusterType.Spec.Playbook,
		Action:            string(action),
	}
}

func ownerReference(cluster *v1alpha1.Cluster) metav1.OwnerReference {
	return metav1.OwnerReference{
		APIVersion: v1alpha1.GroupVersion.String(),
		Kind:       v1alpha1.ClusterKind,
		Name:       cluster.GetName(),
		UID:        cluster.GetUID(),
	}
}

// toYAMLDocument encodes the given map as a YAML document with a leading separator.
func toYAMLDocument(vars map[string]string) (string, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	data, err := yaml.Marshal(vars)
	if err != nil {
		return "", err
	}
	return "---\n" + string(data), nil
}
