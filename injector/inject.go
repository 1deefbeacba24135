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

package injector

import (
	"fmt"
	"reflect"

	"github.com/DHcurry/tiny-spring/bean"
	"github.com/DHcurry/tiny-spring/errors"
	"github.com/DHcurry/tiny-spring/reflection"
	"github.com/xfali/xlog"
)

const (
	defaultInjectTagName = "inject"
)

var InjectTagName = defaultInjectTagName

// 根据tag自动注入bean字段，作为PostProcessor在属性注入后执行：
//   Service Service `inject:""`      按类型匹配唯一的bean
//   Dao     *Dao    `inject:"dao"`   按名称注入
type Injector interface {
	bean.PostProcessor

	// 注入o中带有inject tag的字段，beanName为o自身的名称，按类型匹配时跳过自身
	Inject(o interface{}, beanName string) error
}

type defaultInjector struct {
	logger      xlog.Logger
	factory     bean.BeanFactory
	tagName     string
	ignoreError bool
}

type Opt func(*defaultInjector)

func New(factory bean.BeanFactory, opts ...Opt) *defaultInjector {
	ret := &defaultInjector{
		logger:  xlog.GetLogger(),
		factory: factory,
		tagName: InjectTagName,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (injector *defaultInjector) PostProcessBeforeInitialization(o interface{}, beanName string) (interface{}, error) {
	return o, injector.Inject(o, beanName)
}

func (injector *defaultInjector) PostProcessAfterInitialization(o interface{}, beanName string) (interface{}, error) {
	return o, nil
}

func (injector *defaultInjector) Inject(o interface{}, beanName string) error {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup(injector.tagName)
		if !ok {
			continue
		}
		err := injector.injectValue(beanName, tag, v.Field(i))
		if err != nil {
			if injector.ignoreError {
				injector.logger.Errorf("Inject failed: Field [%s: %s] error: %s\n ",
					reflection.GetTypeName(t), field.Name, err.Error())
				continue
			}
			return errors.Configuration(beanName, "Inject field %s failed", field.Name).WithCause(err)
		}
	}
	return nil
}

func (injector *defaultInjector) injectValue(self, name string, v reflect.Value) error {
	if !v.CanSet() {
		return fmt.Errorf("value cannot set")
	}
	if name == "" {
		var err error
		name, err = injector.matchByType(self, v.Type())
		if err != nil {
			return err
		}
	}
	o, err := injector.factory.GetBean(name)
	if err != nil {
		return err
	}
	return reflection.Assign(v, o)
}

func (injector *defaultInjector) matchByType(self string, vt reflect.Type) (string, error) {
	var matches []string
	for _, name := range injector.factory.DefinitionNames() {
		if name == self {
			continue
		}
		def, ok := injector.factory.GetDefinition(name)
		if ok && def.Class().Type().AssignableTo(vt) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("cannot find any implementation of %s", reflection.GetTypeName(vt))
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("found more than 1 implementation of %s: %v", reflection.GetTypeName(vt), matches)
	}
}

func OptSetLogger(v xlog.Logger) Opt {
	return func(injector *defaultInjector) {
		injector.logger = v
	}
}

func OptSetInjectTagName(v string) Opt {
	return func(injector *defaultInjector) {
		injector.tagName = v
	}
}

// 注入失败时仅打印错误日志，不中断bean的创建
func OptIgnoreError(ignore bool) Opt {
	return func(injector *defaultInjector) {
		injector.ignoreError = ignore
	}
}
