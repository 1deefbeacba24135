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
	"github.com/DHcurry/tiny-spring/bean"
)

type State int32

const (
	StateUnrefreshed State = iota
	StateRefreshing
	StateRefreshed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnrefreshed:
		return "Unrefreshed"
	case StateRefreshing:
		return "Refreshing"
	case StateRefreshed:
		return "Refreshed"
	case StateFailed:
		return "Failed"
	}
	return "Unknown"
}

type ApplicationContext interface {
	// 获得应用名称
	GetApplicationName() string

	// 加载bean定义、注册PostProcessor、按顺序创建所有bean
	// 只能在Unrefreshed状态调用一次
	Refresh() error

	// 当前状态
	State() State

	// 根据名称获得bean
	GetBean(name string) (interface{}, error)

	// 按实例化顺序获得具备该能力的所有bean
	GetBeansOfCapability(capability bean.Capability) ([]interface{}, error)

	// 是否包含bean定义
	ContainsBean(name string) bool

	// 增加事件监听器
	AddListeners(listeners ...ApplicationEventListener)

	// 关闭，销毁所有bean
	Close() error
}

type ApplicationContextAware interface {
	// 装配ApplicationContext
	// 在bean属性注入之后、BeanAfterSet之前调用
	SetApplicationContext(ctx ApplicationContext)
}

var (
	ApplicationContextAwareCapability  = bean.CapabilityOf((*ApplicationContextAware)(nil))
	ApplicationEventListenerCapability = bean.CapabilityOf((*ApplicationEventListener)(nil))
)

// 为ApplicationContextAware的bean装配context
type contextAwareProcessor struct {
	ctx ApplicationContext
}

func newContextAwareProcessor(ctx ApplicationContext) *contextAwareProcessor {
	return &contextAwareProcessor{ctx: ctx}
}

func (p *contextAwareProcessor) PostProcessBeforeInitialization(o interface{}, beanName string) (interface{}, error) {
	if v, ok := o.(ApplicationContextAware); ok {
		v.SetApplicationContext(p.ctx)
	}
	return o, nil
}

func (p *contextAwareProcessor) PostProcessAfterInitialization(o interface{}, beanName string) (interface{}, error) {
	return o, nil
}
