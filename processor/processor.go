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

package processor

import (
	"github.com/DHcurry/tiny-spring/bean"
)

type ProcessFunc func(o interface{}, beanName string) (interface{}, error)

// 使用方法实现bean.PostProcessor，未设置的阶段保持原实例
type Funcs struct {
	Before ProcessFunc
	After  ProcessFunc
}

func NewBeforeProcessor(f ProcessFunc) *Funcs {
	return &Funcs{Before: f}
}

func NewAfterProcessor(f ProcessFunc) *Funcs {
	return &Funcs{After: f}
}

func (p *Funcs) PostProcessBeforeInitialization(o interface{}, beanName string) (interface{}, error) {
	if p.Before == nil {
		return o, nil
	}
	return p.Before(o, beanName)
}

func (p *Funcs) PostProcessAfterInitialization(o interface{}, beanName string) (interface{}, error) {
	if p.After == nil {
		return o, nil
	}
	return p.After(o, beanName)
}

var _ bean.PostProcessor = (*Funcs)(nil)
