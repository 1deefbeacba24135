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

package reader

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/DHcurry/tiny-spring/bean"
	"github.com/DHcurry/tiny-spring/errors"
	"github.com/DHcurry/tiny-spring/resource"
	"github.com/xfali/xlog"
)

// 从配置中读取bean定义并注册到registry
type Reader interface {
	LoadBeanDefinitions(registry bean.DefinitionRegistry, location string) error
}

type beanSpec struct {
	id         string
	class      string
	order      *int
	properties []propertySpec
}

type propertySpec struct {
	name  string
	value string
	ref   string
}

type parseFunc func(r io.Reader) ([]beanSpec, error)

type Opt func(*baseReader)

type baseReader struct {
	logger  xlog.Logger
	loader  resource.Loader
	classes bean.ClassRegistry
	parse   parseFunc
}

func newBaseReader(classes bean.ClassRegistry, parse parseFunc, opts ...Opt) *baseReader {
	ret := &baseReader{
		logger:  xlog.GetLogger(),
		loader:  resource.NewLoader(),
		classes: classes,
		parse:   parse,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func OptSetLogger(logger xlog.Logger) Opt {
	return func(r *baseReader) {
		r.logger = logger
	}
}

func OptSetResourceLoader(loader resource.Loader) Opt {
	return func(r *baseReader) {
		if loader != nil {
			r.loader = loader
		}
	}
}

// 按扩展名选择Reader：.xml、.yaml、.yml
func NewReaderByLocation(location string, classes bean.ClassRegistry, opts ...Opt) (Reader, error) {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".xml":
		return NewXmlReader(classes, opts...), nil
	case ".yaml", ".yml":
		return NewYamlReader(classes, opts...), nil
	}
	return nil, errors.Configuration("", "Cannot find reader for %s", location)
}

type namedDefinition struct {
	name string
	def  *bean.Definition
	opts []bean.RegisterOpt
}

// 先解析并校验全部定义，全部通过后再注册
func (r *baseReader) LoadBeanDefinitions(registry bean.DefinitionRegistry, location string) error {
	res, err := r.loader.GetResource(location)
	if err != nil {
		return err
	}
	in, err := res.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	specs, err := r.parse(in)
	if err != nil {
		return errors.Configuration("", "Parse %s failed", res.Location()).WithCause(err)
	}

	defs := make([]namedDefinition, 0, len(specs))
	for _, spec := range specs {
		d, err := r.toDefinition(spec)
		if err != nil {
			return err
		}
		defs = append(defs, d)
	}
	for _, d := range defs {
		err := registry.RegisterDefinition(d.name, d.def, d.opts...)
		if err != nil {
			return err
		}
	}
	r.logger.Infof("Loaded %d bean definitions from %s\n", len(defs), res.Location())
	return nil
}

func (r *baseReader) toDefinition(spec beanSpec) (namedDefinition, error) {
	ret := namedDefinition{name: spec.id}
	if spec.id == "" {
		return ret, errors.Configuration("", "Bean definition without id, class: %s", spec.class)
	}
	if spec.class == "" {
		return ret, errors.Configuration(spec.id, "Bean definition without class")
	}
	class, ok := r.classes.GetClass(spec.class)
	if !ok {
		return ret, errors.Configuration(spec.id, "Class %s not found", spec.class)
	}
	ret.def = bean.NewDefinition(class)
	for _, p := range spec.properties {
		if p.name == "" {
			return ret, errors.Configuration(spec.id, "Property without name")
		}
		if p.value != "" {
			ret.def.AddPropertyValue(bean.NewPropertyValue(p.name, p.value))
		} else {
			if p.ref == "" {
				return ret, errors.Configuration(spec.id, "Configuration problem: <property> element for property '%s' must specify a ref or value", p.name).WithProperty(p.name)
			}
			ret.def.AddPropertyValue(bean.NewReferenceValue(p.name, p.ref))
		}
	}
	if spec.order != nil {
		ret.opts = append(ret.opts, bean.SetOrder(*spec.order))
	}
	return ret, nil
}
