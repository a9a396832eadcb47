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

package objectutil

import (
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const fmtSeparator = "/"

// FmtObject returns the object ID in the format <kind>/<namespace>/<name>.
// Objects without a name are formatted with their generate name prefix.
func FmtObject(kind string, obj metav1.Object) string {
	var builder strings.Builder
	builder.WriteString(kind + fmtSeparator)
	if obj.GetNamespace() != "" {
		builder.WriteString(obj.GetNamespace() + fmtSeparator)
	}
	if obj.GetName() != "" {
		builder.WriteString(obj.GetName())
	} else {
		builder.WriteString(obj.GetGenerateName())
	}
	return builder.String()
}
