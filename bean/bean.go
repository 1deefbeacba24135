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

type Initializing interface {
	// 当属性注入完成且所有PostProcessBeforeInitialization执行完毕后回调
	BeanAfterSet() error
}

type Disposable interface {
	// 容器关闭或刷新失败回滚时回调，按创建的逆序执行
	BeanDestroy() error
}

// 实现该接口的bean由自身处理属性注入，不再通过反射设置字段
type PropertySetter interface {
	// value为字面值（string）或者被引用bean的实例
	SetProperty(name string, value interface{}) error
}

// bean创建过程中的扩展点，按注册顺序执行
type PostProcessor interface {
	// 属性注入完成后、BeanAfterSet之前调用
	// 返回值作为bean的新实例，返回nil表示保持原实例
	PostProcessBeforeInitialization(bean interface{}, beanName string) (interface{}, error)

	// BeanAfterSet之后调用
	// 返回值作为bean的新实例，返回nil表示保持原实例
	PostProcessAfterInitialization(bean interface{}, beanName string) (interface{}, error)
}

var (
	PostProcessorCapability = CapabilityOf((*PostProcessor)(nil))
	InitializingCapability  = CapabilityOf((*Initializing)(nil))
	DisposableCapability    = CapabilityOf((*Disposable)(nil))
)
