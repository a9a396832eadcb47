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
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is matched by every ValidationError.
var ErrInvalidInput = errors.New("invalid render input")

// ValidationError is returned when the Cluster or ClusterType
// lacks a field required to render a runnable job.
type ValidationError struct {
	Cluster string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cluster '%s' can't be rendered, invalid fields: %s", e.Cluster, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

type renderInput struct {
	ClusterName       string `validate:"required"`
	ClusterUID        string `validate:"required"`
	CredentialsSecret string `validate:"required"`
	ClusterTypeName   string `validate:"required"`
	GitURL            string `validate:"required"`
	GitVersion        string `validate:"required"`
	Playbook          string `validate:"required"`
	Action            string `validate:"oneof=create remove"`
}

var validate = validator.New()

func validateInput(in renderInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Cluster: in.ClusterName}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return verr
}
