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
	"sync"

	"github.com/DHcurry/tiny-spring/errors"
	"github.com/DHcurry/tiny-spring/reflection"
	pkgerrors "github.com/pkg/errors"
	"github.com/xfali/xlog"
)

type DefinitionRegistry interface {
	// 注册或覆盖bean定义，新名称追加到实例化顺序的末尾
	// 覆盖时保留原有位置，除非通过SetOrder指定了不同的order
	RegisterDefinition(name string, definition *Definition, opts ...RegisterOpt) error

	// 获得bean定义
	GetDefinition(name string) (*Definition, bool)

	// 是否包含bean定义
	ContainsDefinition(name string) bool

	// 按实例化顺序返回所有bean名称
	DefinitionNames() []string
}

type BeanFactory interface {
	DefinitionRegistry

	// 获得bean，不存在时创建并缓存
	GetBean(name string) (interface{}, error)

	// 按实例化顺序返回所有具备该能力的bean，未创建的bean会被创建
	GetBeansOfCapability(capability Capability) ([]interface{}, error)

	// 添加PostProcessor，对之后创建的bean生效
	AddPostProcessor(p PostProcessor)

	// 按顺序创建所有bean
	PreInstantiateSingletons() error

	// 按创建的逆序销毁所有已创建的bean并清空实例槽
	DestroySingletons() error
}

type FactoryOpt func(*defaultBeanFactory)

// 注意：非并发安全。多协程共享时需要调用方对GetBean加锁，
// 否则同一个bean可能被重复创建并竞争实例槽
type defaultBeanFactory struct {
	logger xlog.Logger
	pool   *pool

	processors     []PostProcessor
	processorsLock sync.Mutex

	// 完成创建的bean名称，按创建顺序
	created []string
}

func NewBeanFactory(opts ...FactoryOpt) *defaultBeanFactory {
	ret := &defaultBeanFactory{
		logger: xlog.GetLogger(),
		pool:   newPool(defaultPoolSize),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func OptSetFactoryLogger(logger xlog.Logger) FactoryOpt {
	return func(f *defaultBeanFactory) {
		f.logger = logger
	}
}

func (f *defaultBeanFactory) RegisterDefinition(name string, definition *Definition, opts ...RegisterOpt) error {
	if name == "" {
		return errors.Configuration("", "Bean name is empty")
	}
	if definition == nil {
		return errors.Configuration(name, "Definition is nil")
	}
	if definition.Class() == nil {
		return errors.Configuration(name, "Definition without class")
	}
	if !f.pool.store(name, newElem(definition, opts...)) {
		f.logger.Infof("Bean definition [%s] overwritten, class: %s\n", name, definition.Class().Name())
	}
	return nil
}

func (f *defaultBeanFactory) GetDefinition(name string) (*Definition, bool) {
	e, ok := f.pool.load(name)
	if !ok {
		return nil, false
	}
	return e.def, true
}

func (f *defaultBeanFactory) ContainsDefinition(name string) bool {
	_, ok := f.pool.load(name)
	return ok
}

func (f *defaultBeanFactory) DefinitionNames() []string {
	keys := f.pool.keys()
	ret := make([]string, len(keys))
	copy(ret, keys)
	return ret
}

func (f *defaultBeanFactory) GetBean(name string) (interface{}, error) {
	def, ok := f.GetDefinition(name)
	if !ok {
		return nil, errors.UnknownBean(name)
	}
	// 已完成或者提前暴露的实例（循环引用）
	if o, ok := def.Bean(); ok {
		return o, nil
	}
	return f.createBean(name, def)
}

func (f *defaultBeanFactory) createBean(name string, def *Definition) (interface{}, error) {
	f.logger.Debugf("Creating bean [%s] of class [%s]\n", name, def.Class().Name())
	o, err := def.Class().New()
	if err != nil {
		return nil, errors.Instantiation(name, err, "Cannot create instance of class %s", def.Class().Name())
	}
	def.expose(o)
	// 失败或panic时清空实例槽，已经持有提前暴露实例的bean不受影响
	defer func() {
		if !def.IsComplete() {
			def.reset()
		}
	}()

	err = f.applyPropertyValues(name, def, o)
	if err != nil {
		return nil, err
	}

	o, err = f.initializeBean(o, name)
	if err != nil {
		return nil, err
	}

	def.complete(o)
	f.created = append(f.created, name)
	return o, nil
}

func (f *defaultBeanFactory) applyPropertyValues(name string, def *Definition, o interface{}) error {
	for _, pv := range def.PropertyValues().List() {
		value := pv.Value()
		if ref, ok := value.(Reference); ok {
			dep, err := f.GetBean(ref.Name())
			if err != nil {
				return pkgerrors.WithMessagef(err, "resolve reference [%s] of bean [%s] property [%s]", ref.Name(), name, pv.Name())
			}
			value = dep
		}
		err := f.injectProperty(name, o, pv.Name(), value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *defaultBeanFactory) injectProperty(name string, o interface{}, property string, value interface{}) error {
	if setter, ok := o.(PropertySetter); ok {
		err := setter.SetProperty(property, value)
		if err == nil {
			return nil
		}
		var be *errors.BeanError
		if pkgerrors.As(err, &be) {
			return err
		}
		return errors.PropertyType(name, property, err, "")
	}
	err := reflection.SetProperty(o, property, value)
	if err != nil {
		var be *errors.BeanError
		if pkgerrors.As(err, &be) && be.BeanName == "" {
			be.BeanName = name
		}
		return err
	}
	return nil
}

func (f *defaultBeanFactory) initializeBean(o interface{}, name string) (interface{}, error) {
	processors := f.getPostProcessors()
	for _, p := range processors {
		ret, err := p.PostProcessBeforeInitialization(o, name)
		if err != nil {
			return nil, errors.Hook(name, "PostProcessBeforeInitialization", err)
		}
		if ret != nil {
			o = ret
		}
	}

	if v, ok := o.(Initializing); ok {
		if err := v.BeanAfterSet(); err != nil {
			return nil, errors.Instantiation(name, err, "BeanAfterSet failed")
		}
	}

	for _, p := range processors {
		ret, err := p.PostProcessAfterInitialization(o, name)
		if err != nil {
			return nil, errors.Hook(name, "PostProcessAfterInitialization", err)
		}
		if ret != nil {
			o = ret
		}
	}
	return o, nil
}

func (f *defaultBeanFactory) GetBeansOfCapability(capability Capability) ([]interface{}, error) {
	var ret []interface{}
	for _, name := range f.DefinitionNames() {
		def, ok := f.GetDefinition(name)
		if !ok || !def.Class().Satisfies(capability) {
			continue
		}
		o, err := f.GetBean(name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, o)
	}
	return ret, nil
}

func (f *defaultBeanFactory) AddPostProcessor(p PostProcessor) {
	if p == nil {
		return
	}
	f.processorsLock.Lock()
	defer f.processorsLock.Unlock()

	f.processors = append(f.processors, p)
	f.logger.Debugf("PostProcessor %T added\n", p)
}

func (f *defaultBeanFactory) getPostProcessors() []PostProcessor {
	f.processorsLock.Lock()
	defer f.processorsLock.Unlock()

	ret := make([]PostProcessor, len(f.processors))
	copy(ret, f.processors)
	return ret
}

func (f *defaultBeanFactory) PreInstantiateSingletons() error {
	f.logger.Debugf("Pre-instantiating %d singletons\n", f.pool.size())
	for _, name := range f.DefinitionNames() {
		_, err := f.GetBean(name)
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *defaultBeanFactory) DestroySingletons() error {
	var errs errors.Errors
	for i := len(f.created) - 1; i >= 0; i-- {
		name := f.created[i]
		def, ok := f.GetDefinition(name)
		if !ok {
			continue
		}
		if o, ok := def.Bean(); ok && def.IsComplete() {
			if v, ok := o.(Disposable); ok {
				err := v.BeanDestroy()
				if err != nil {
					f.logger.Errorln(err)
					errs.AddError(pkgerrors.WithMessagef(err, "destroy bean [%s]", name))
				}
			}
		}
		def.reset()
	}
	f.created = nil
	return errs.ErrorOrNil()
}
