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
	"reflect"

	"github.com/xfali/fig"
)

const defaultValueTagName = "fig"

// 将配置中的值填充到带有fig tag的bean字段中，如：
//   Name string `fig:"app.name"`
type ValueProcessor struct {
	conf      fig.Properties
	tagPxName string
	tagName   string
}

type Opt func(processor *ValueProcessor)

func OptSetValueTag(tagPxName, tagName string) Opt {
	return func(processor *ValueProcessor) {
		if tagName != "" {
			if tagPxName == "" {
				tagPxName = fig.TagPrefixName
			}
			processor.tagName = tagName
			processor.tagPxName = tagPxName
		}
	}
}

func NewValueProcessor(conf fig.Properties, opts ...Opt) *ValueProcessor {
	ret := &ValueProcessor{
		conf: conf,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *ValueProcessor) PostProcessBeforeInitialization(o interface{}, beanName string) (interface{}, error) {
	if p.conf == nil || !p.hasValueField(o) {
		return o, nil
	}
	var err error
	if p.tagName == "" {
		err = fig.Fill(p.conf, o)
	} else {
		err = fig.FillExWithTagName(p.conf, o, false, p.tagPxName, p.tagName)
	}
	return o, err
}

func (p *ValueProcessor) PostProcessAfterInitialization(o interface{}, beanName string) (interface{}, error) {
	return o, nil
}

func (p *ValueProcessor) hasValueField(o interface{}) bool {
	t := reflect.TypeOf(o)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return false
	}
	t = t.Elem()
	tagName := p.tagName
	if tagName == "" {
		tagName = defaultValueTagName
	}
	for i := 0; i < t.NumField(); i++ {
		if _, ok := t.Field(i).Tag.Lookup(tagName); ok {
			return true
		}
	}
	return false
}
