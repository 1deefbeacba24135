/*
 * Copyright (C) 2026, DHcurry.
 * All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package reflection

import (
	"fmt"
	"reflect"

	nureflection "github.com/xfali/neve-utils/reflection"
)

// 类型名称，包路径中的"/"替换为"."，如：*github.com.DHcurry.tiny-spring.bean.Class
func GetTypeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + GetTypeName(t.Elem())
	case reflect.Slice:
		return "[]" + GetTypeName(t.Elem())
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", GetTypeName(t.Key()), GetTypeName(t.Elem()))
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return nureflection.GetTypeName(t)
}

func GetObjectTypeName(o interface{}) string {
	return GetTypeName(reflect.TypeOf(o))
}
