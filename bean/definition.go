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

const (
	slotEmpty int32 = iota
	slotExposed
	slotComplete
)

// bean定义：类型描述、属性列表以及实例槽
// 实例槽状态：empty -> exposed（仅完成分配，属性未注入） -> complete
type Definition struct {
	class      *Class
	properties PropertyValues

	instance interface{}
	state    int32
}

func NewDefinition(class *Class, pvs ...PropertyValue) *Definition {
	ret := &Definition{
		class: class,
		state: slotEmpty,
	}
	for _, pv := range pvs {
		ret.properties.Add(pv)
	}
	return ret
}

func (d *Definition) Class() *Class {
	return d.class
}

func (d *Definition) PropertyValues() *PropertyValues {
	return &d.properties
}

func (d *Definition) AddPropertyValue(pv PropertyValue) *Definition {
	d.properties.Add(pv)
	return d
}

// 实例槽中的对象，可能是提前暴露的未完成实例
func (d *Definition) Bean() (interface{}, bool) {
	if d.state == slotEmpty {
		return nil, false
	}
	return d.instance, true
}

func (d *Definition) IsComplete() bool {
	return d.state == slotComplete
}

func (d *Definition) IsExposed() bool {
	return d.state == slotExposed
}

// 提前暴露刚分配的实例，用于打破循环引用
func (d *Definition) expose(o interface{}) bool {
	if d.state != slotEmpty {
		return false
	}
	d.instance = o
	d.state = slotExposed
	return true
}

// 写入经过PostProcessor处理的最终实例，完成后不再覆盖
func (d *Definition) complete(o interface{}) bool {
	if d.state == slotComplete {
		return false
	}
	d.instance = o
	d.state = slotComplete
	return true
}

func (d *Definition) reset() {
	d.instance = nil
	d.state = slotEmpty
}
