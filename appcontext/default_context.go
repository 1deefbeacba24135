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

package appcontext

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/DHcurry/tiny-spring/bean"
	"github.com/DHcurry/tiny-spring/errors"
	"github.com/DHcurry/tiny-spring/injector"
	"github.com/DHcurry/tiny-spring/processor"
	"github.com/DHcurry/tiny-spring/reader"
	"github.com/xfali/fig"
	"github.com/xfali/xlog"
)

const (
	KeyApplicationName = "tinyioc.application.name"
	KeyRefreshRollback = "tinyioc.refresh.rollback"
	KeyValueDisable    = "tinyioc.value.disable"

	defaultApplicationName = "TinySpring Application"
)

type Opt func(*defaultApplicationContext)

type definitionSource struct {
	reader   reader.Reader
	location string
}

type defaultApplicationContext struct {
	config  fig.Properties
	logger  xlog.Logger
	factory bean.BeanFactory
	sources []definitionSource

	processors []bean.PostProcessor

	listeners    []ApplicationEventListener
	listenerLock sync.Mutex

	appName         string
	rollback        bool
	disableAutowire bool
	disableValue    bool
	curState        int32

	closeOnce sync.Once
}

func NewDefaultApplicationContext(opts ...Opt) *defaultApplicationContext {
	ret := &defaultApplicationContext{
		logger:   xlog.GetLogger(),
		appName:  defaultApplicationName,
		rollback: true,
		curState: int32(StateUnrefreshed),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.factory == nil {
		ret.factory = bean.NewBeanFactory(bean.OptSetFactoryLogger(ret.logger))
	}
	if ret.config != nil {
		ret.appName = ret.config.Get(KeyApplicationName, ret.appName)
		// Opt配置优先
		ret.rollback = ret.rollback && ret.getBool(KeyRefreshRollback, true)
		ret.disableValue = ret.disableValue || ret.getBool(KeyValueDisable, false)
	}
	return ret
}

func (ctx *defaultApplicationContext) getBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(ctx.config.Get(key, ""))
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		ctx.logger.Warnf("Config %s value %q is not a bool, use default %t\n", key, v, defaultValue)
		return defaultValue
	}
	return b
}

func OptSetConfig(config fig.Properties) Opt {
	return func(context *defaultApplicationContext) {
		context.config = config
	}
}

func OptSetLogger(logger xlog.Logger) Opt {
	return func(context *defaultApplicationContext) {
		context.logger = logger
	}
}

func OptSetBeanFactory(factory bean.BeanFactory) Opt {
	return func(context *defaultApplicationContext) {
		context.factory = factory
	}
}

// Refresh时使用reader从locations加载bean定义
func OptAddDefinitions(r reader.Reader, locations ...string) Opt {
	return func(context *defaultApplicationContext) {
		for _, l := range locations {
			context.sources = append(context.sources, definitionSource{reader: r, location: l})
		}
	}
}

// 在容器内置PostProcessor之后、bean定义中发现的PostProcessor之前注册
func OptAddPostProcessor(processors ...bean.PostProcessor) Opt {
	return func(context *defaultApplicationContext) {
		context.processors = append(context.processors, processors...)
	}
}

// Refresh失败时保留已创建的bean
func OptDisableRollback() Opt {
	return func(context *defaultApplicationContext) {
		context.rollback = false
	}
}

// 关闭inject tag自动注入
func OptDisableAutowire() Opt {
	return func(context *defaultApplicationContext) {
		context.disableAutowire = true
	}
}

func (ctx *defaultApplicationContext) GetApplicationName() string {
	return ctx.appName
}

func (ctx *defaultApplicationContext) State() State {
	return State(atomic.LoadInt32(&ctx.curState))
}

// 返回容器使用的BeanFactory，可在Refresh之前手动注册bean定义
func (ctx *defaultApplicationContext) BeanFactory() bean.BeanFactory {
	return ctx.factory
}

func (ctx *defaultApplicationContext) Refresh() error {
	if !atomic.CompareAndSwapInt32(&ctx.curState, int32(StateUnrefreshed), int32(StateRefreshing)) {
		return fmt.Errorf("Application Context Status error, current: %s . ", ctx.State())
	}
	ctx.logger.Infof("%s refreshing\n", ctx.appName)

	err := ctx.doRefresh()
	if err != nil {
		ctx.logger.Errorln("Refresh failed: ", err)
		if ctx.rollback {
			dErr := ctx.factory.DestroySingletons()
			if dErr != nil {
				ctx.logger.Errorln("Rollback failed: ", dErr)
			}
		}
		atomic.StoreInt32(&ctx.curState, int32(StateFailed))
		ctx.publish(NewContextFailedEvent(ctx, err))
		return err
	}

	if !atomic.CompareAndSwapInt32(&ctx.curState, int32(StateRefreshing), int32(StateRefreshed)) {
		ctx.logger.Fatal("Cannot be here!")
	}
	ctx.logger.Infof("%s refreshed, %d beans\n", ctx.appName, len(ctx.factory.DefinitionNames()))
	ctx.publish(NewContextRefreshedEvent(ctx))
	return nil
}

func (ctx *defaultApplicationContext) doRefresh() error {
	err := ctx.loadBeanDefinitions()
	if err != nil {
		return err
	}
	err = ctx.registerPostProcessors()
	if err != nil {
		return err
	}
	err = ctx.factory.PreInstantiateSingletons()
	if err != nil {
		return err
	}
	return ctx.registerListeners()
}

func (ctx *defaultApplicationContext) loadBeanDefinitions() error {
	for _, s := range ctx.sources {
		err := s.reader.LoadBeanDefinitions(ctx.factory, s.location)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ctx *defaultApplicationContext) registerPostProcessors() error {
	ctx.factory.AddPostProcessor(newContextAwareProcessor(ctx))
	if !ctx.disableAutowire {
		ctx.factory.AddPostProcessor(injector.New(ctx.factory, injector.OptSetLogger(ctx.logger)))
	}
	if ctx.config != nil && !ctx.disableValue {
		ctx.factory.AddPostProcessor(processor.NewValueProcessor(ctx.config))
	}
	for _, p := range ctx.processors {
		ctx.factory.AddPostProcessor(p)
	}

	found, err := ctx.factory.GetBeansOfCapability(bean.PostProcessorCapability)
	if err != nil {
		return err
	}
	for _, o := range found {
		p, ok := o.(bean.PostProcessor)
		if !ok {
			return errors.Configuration("", "%T is tagged as PostProcessor but does not implement it", o)
		}
		ctx.factory.AddPostProcessor(p)
	}
	return nil
}

func (ctx *defaultApplicationContext) registerListeners() error {
	found, err := ctx.factory.GetBeansOfCapability(ApplicationEventListenerCapability)
	if err != nil {
		return err
	}
	for _, o := range found {
		if l, ok := o.(ApplicationEventListener); ok {
			ctx.AddListeners(l)
		}
	}
	return nil
}

func (ctx *defaultApplicationContext) GetBean(name string) (interface{}, error) {
	if ctx.State() == StateFailed {
		return nil, fmt.Errorf("Application Context refresh failed, cannot get bean %s . ", name)
	}
	return ctx.factory.GetBean(name)
}

func (ctx *defaultApplicationContext) GetBeansOfCapability(capability bean.Capability) ([]interface{}, error) {
	if ctx.State() == StateFailed {
		return nil, fmt.Errorf("Application Context refresh failed, cannot get beans of %s . ", capability.Name())
	}
	return ctx.factory.GetBeansOfCapability(capability)
}

func (ctx *defaultApplicationContext) ContainsBean(name string) bool {
	return ctx.factory.ContainsDefinition(name)
}

func (ctx *defaultApplicationContext) AddListeners(listeners ...ApplicationEventListener) {
	ctx.listenerLock.Lock()
	defer ctx.listenerLock.Unlock()

	for _, l := range listeners {
		if l != nil {
			ctx.listeners = append(ctx.listeners, l)
		}
	}
}

func (ctx *defaultApplicationContext) publish(e ApplicationEvent) {
	ctx.listenerLock.Lock()
	listeners := make([]ApplicationEventListener, len(ctx.listeners))
	copy(listeners, ctx.listeners)
	ctx.listenerLock.Unlock()

	for _, l := range listeners {
		l.OnApplicationEvent(e)
	}
}

func (ctx *defaultApplicationContext) Close() (err error) {
	ctx.closeOnce.Do(func() {
		ctx.publish(NewContextClosedEvent(ctx))
		err = ctx.factory.DestroySingletons()
		if err != nil {
			ctx.logger.Errorln(err)
		}
		ctx.logger.Infof("%s closed\n", ctx.appName)
	})
	return err
}
