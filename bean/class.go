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

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/DHcurry/tiny-spring/errors"
	"github.com/DHcurry/tiny-spring/reflection"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// 能力描述，一般由接口类型声明，也可以是只通过Tag标记的名称
type Capability struct {
	name string
	t    reflect.Type
}

// 参数为接口指针，如：CapabilityOf((*PostProcessor)(nil))
func CapabilityOf(i interface{}) Capability {
	t := reflect.TypeOf(i)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		panic(fmt.Errorf("CapabilityOf needs a pointer of interface, but get %v", t))
	}
	t = t.Elem()
	return Capability{
		name: reflection.GetTypeName(t),
		t:    t,
	}
}

// 仅通过名称匹配的能力，class需要使用Tag显式标记
func NewCapability(name string) Capability {
	return Capability{name: name}
}

func (c Capability) Name() string {
	return c.name
}

type ClassOpt func(*Class)

// 显式标记class具备的能力
func Tag(caps ...Capability) ClassOpt {
	return func(c *Class) {
		for _, v := range caps {
			c.tags[v.name] = struct{}{}
		}
	}
}

// bean的类型描述，通过注册的无参构造方法创建实例
// 构造方法支持：func() *T、func() I、func() (*T, error)、func() (I, error)
type Class struct {
	name string
	t    reflect.Type
	fn   reflect.Value
	tags map[string]struct{}
}

func NewClass(name string, constructor interface{}, opts ...ClassOpt) (*Class, error) {
	if constructor == nil {
		return nil, errors.Configuration("", "Class %s constructor is nil", name)
	}
	ft := reflect.TypeOf(constructor)
	if err := verifyConstructor(ft); err != nil {
		return nil, errors.Configuration("", "Class %s constructor %s invalid: %v", name, ft.String(), err)
	}
	ot := ft.Out(0)
	if name == "" {
		name = defaultClassName(ot)
	}
	ret := &Class{
		name: name,
		t:    ot,
		fn:   reflect.ValueOf(constructor),
		tags: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

func verifyConstructor(ft reflect.Type) error {
	if ft.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function")
	}
	if ft.NumIn() != 0 {
		return fmt.Errorf("constructor cannot with params")
	}
	if ft.NumOut() != 1 && ft.NumOut() != 2 {
		return fmt.Errorf("constructor must return TYPE or (TYPE, error)")
	}
	if ft.NumOut() == 2 && ft.Out(1) != errorType {
		return fmt.Errorf("constructor 2nd return value must be error")
	}
	rt := ft.Out(0)
	if rt.Kind() != reflect.Ptr && rt.Kind() != reflect.Interface {
		return fmt.Errorf("constructor 1st return value must be pointer or interface")
	}
	return nil
}

func defaultClassName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflection.GetTypeName(t)
}

func (c *Class) Name() string {
	return c.name
}

// 构造方法声明的返回类型
func (c *Class) Type() reflect.Type {
	return c.t
}

// 创建bean实例
func (c *Class) New() (interface{}, error) {
	rets := c.fn.Call(nil)
	if len(rets) == 2 && !rets[1].IsNil() {
		return nil, rets[1].Interface().(error)
	}
	v := rets[0]
	if !v.IsValid() || v.IsNil() {
		return nil, fmt.Errorf("constructor of %s returned nil", c.name)
	}
	return v.Interface(), nil
}

// 显式标记或者构造方法返回类型实现了能力接口
func (c *Class) Satisfies(capability Capability) bool {
	if _, ok := c.tags[capability.name]; ok {
		return true
	}
	return capability.t != nil && c.t.Implements(capability.t)
}

type ClassRegistry interface {
	// 注册class，name为空时使用构造方法返回值的类型名称
	RegisterClass(name string, constructor interface{}, opts ...ClassOpt) (*Class, error)

	// 根据名称获得class
	GetClass(name string) (*Class, bool)
}

type defaultClassRegistry struct {
	classes map[string]*Class
	locker  sync.RWMutex
}

func NewClassRegistry() *defaultClassRegistry {
	return &defaultClassRegistry{
		classes: map[string]*Class{},
	}
}

func (r *defaultClassRegistry) RegisterClass(name string, constructor interface{}, opts ...ClassOpt) (*Class, error) {
	c, err := NewClass(name, constructor, opts...)
	if err != nil {
		return nil, err
	}

	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.classes[c.name]; ok {
		return nil, errors.Configuration("", "Class %s is exists", c.name)
	}
	r.classes[c.name] = c
	return c, nil
}

func (r *defaultClassRegistry) GetClass(name string) (*Class, bool) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	c, ok := r.classes[name]
	return c, ok
}
