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
	"time"
)

type ApplicationEvent interface {
	// 事件发生的时间
	OccurredTime() time.Time
}

type ApplicationEventListener interface {
	// 同步通知，监听器应尽快处理事件，耗时操作请使用协程
	OnApplicationEvent(e ApplicationEvent)
}

type BaseApplicationEvent struct {
	timestamp time.Time
}

func (e *BaseApplicationEvent) ResetOccurredTime() {
	e.timestamp = time.Now()
}

func (e *BaseApplicationEvent) OccurredTime() time.Time {
	return e.timestamp
}

type ApplicationContextEvent struct {
	BaseApplicationEvent
	appCtx ApplicationContext
}

func (e *ApplicationContextEvent) GetAppContext() ApplicationContext {
	return e.appCtx
}

// Refresh成功后触发，所有bean已创建完成
type ContextRefreshedEvent struct {
	ApplicationContextEvent
}

func NewContextRefreshedEvent(appCtx ApplicationContext) *ContextRefreshedEvent {
	ret := &ContextRefreshedEvent{}
	ret.ResetOccurredTime()
	ret.appCtx = appCtx
	return ret
}

// Refresh失败后触发，Err为第一个错误
type ContextFailedEvent struct {
	ApplicationContextEvent
	Err error
}

func NewContextFailedEvent(appCtx ApplicationContext, err error) *ContextFailedEvent {
	ret := &ContextFailedEvent{Err: err}
	ret.ResetOccurredTime()
	ret.appCtx = appCtx
	return ret
}

// 已到达ApplicationContext生命周期末端，bean即将销毁
type ContextClosedEvent struct {
	ApplicationContextEvent
}

func NewContextClosedEvent(appCtx ApplicationContext) *ContextClosedEvent {
	ret := &ContextClosedEvent{}
	ret.ResetOccurredTime()
	ret.appCtx = appCtx
	return ret
}
