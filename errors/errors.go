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

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// 错误分类，使用errors.Is进行匹配
var (
	// 定义不完整或格式错误：缺少class、property同时缺少value和ref等
	ErrConfiguration = stderrors.New("configuration error")
	// 获取未注册的bean
	ErrUnknownBean = stderrors.New("unknown bean")
	// 无法通过默认构造创建bean
	ErrInstantiation = stderrors.New("instantiation error")
	// 字面值无法转换为属性类型
	ErrPropertyType = stderrors.New("property type error")
	// PostProcessor执行失败
	ErrHook = stderrors.New("post processor error")
)

type BeanError struct {
	Kind     error
	BeanName string
	Property string
	Msg      string

	cause error
}

func New(kind error, beanName string, cause error, format string, args ...interface{}) *BeanError {
	ret := &BeanError{
		Kind:     kind,
		BeanName: beanName,
		cause:    cause,
	}
	if format != "" {
		ret.Msg = fmt.Sprintf(format, args...)
	}
	return ret
}

func Configuration(beanName string, format string, args ...interface{}) *BeanError {
	return New(ErrConfiguration, beanName, nil, format, args...)
}

func UnknownBean(name string) *BeanError {
	return New(ErrUnknownBean, name, nil, "No bean named %s is defined", name)
}

func Instantiation(beanName string, cause error, format string, args ...interface{}) *BeanError {
	return New(ErrInstantiation, beanName, cause, format, args...)
}

func PropertyType(beanName, property string, cause error, format string, args ...interface{}) *BeanError {
	return New(ErrPropertyType, beanName, cause, format, args...).WithProperty(property)
}

func Hook(beanName, phase string, cause error) *BeanError {
	return New(ErrHook, beanName, cause, "%s failed", phase)
}

func (e *BeanError) WithProperty(property string) *BeanError {
	e.Property = property
	return e
}

func (e *BeanError) WithCause(cause error) *BeanError {
	e.cause = cause
	return e
}

func (e *BeanError) Error() string {
	buf := strings.Builder{}
	buf.WriteString(e.Kind.Error())
	if e.BeanName != "" {
		buf.WriteString(": bean [")
		buf.WriteString(e.BeanName)
		buf.WriteString("]")
	}
	if e.Property != "" {
		buf.WriteString(" property [")
		buf.WriteString(e.Property)
		buf.WriteString("]")
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	if e.cause != nil {
		buf.WriteString(": ")
		buf.WriteString(e.cause.Error())
	}
	return buf.String()
}

func (e *BeanError) Is(target error) bool {
	return e.Kind == target
}

func (e *BeanError) Unwrap() error {
	return e.cause
}

func IsConfiguration(err error) bool {
	return stderrors.Is(err, ErrConfiguration)
}

func IsUnknownBean(err error) bool {
	return stderrors.Is(err, ErrUnknownBean)
}

func IsInstantiation(err error) bool {
	return stderrors.Is(err, ErrInstantiation)
}

func IsPropertyType(err error) bool {
	return stderrors.Is(err, ErrPropertyType)
}

func IsHook(err error) bool {
	return stderrors.Is(err, ErrHook)
}

// 多个错误的集合，用于销毁、回滚等需要继续执行的流程
type Errors []error

func (es Errors) Empty() bool {
	return len(es) == 0
}

func (es *Errors) AddError(e error) {
	if e != nil {
		*es = append(*es, e)
	}
}

// 为空时返回nil
func (es Errors) ErrorOrNil() error {
	if es.Empty() {
		return nil
	}
	return es
}

func (es Errors) Error() string {
	buf := strings.Builder{}
	for i := range es {
		buf.WriteString(es[i].Error())
		if i < len(es)-1 {
			buf.WriteString(",")
		}
	}
	return buf.String()
}
