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

package bean

// 引用另一个bean，注入时通过BeanFactory.GetBean解析
type Reference struct {
	name string
}

func NewReference(name string) Reference {
	return Reference{name: name}
}

func (r Reference) Name() string {
	return r.name
}

// 属性注入描述，value为字面值或者Reference
type PropertyValue struct {
	name  string
	value interface{}
}

func NewPropertyValue(name string, value interface{}) PropertyValue {
	return PropertyValue{
		name:  name,
		value: value,
	}
}

// 引用属性
func NewReferenceValue(name, ref string) PropertyValue {
	return NewPropertyValue(name, NewReference(ref))
}

func (p PropertyValue) Name() string {
	return p.name
}

func (p PropertyValue) Value() interface{} {
	return p.value
}

func (p PropertyValue) IsReference() bool {
	_, ok := p.value.(Reference)
	return ok
}

// 按添加顺序保存的属性列表
type PropertyValues struct {
	values []PropertyValue
}

func (pvs *PropertyValues) Add(pv PropertyValue) {
	pvs.values = append(pvs.values, pv)
}

func (pvs *PropertyValues) Len() int {
	return len(pvs.values)
}

// 返回副本
func (pvs *PropertyValues) List() []PropertyValue {
	ret := make([]PropertyValue, len(pvs.values))
	copy(ret, pvs.values)
	return ret
}

// 同名属性返回最后添加的值
func (pvs *PropertyValues) Get(name string) (PropertyValue, bool) {
	for i := len(pvs.values) - 1; i >= 0; i-- {
		if pvs.values[i].name == name {
			return pvs.values[i], true
		}
	}
	return PropertyValue{}, false
}
