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

	"github.com/DHcurry/tiny-spring/bean"
	"gopkg.in/yaml.v3"
)

// beans:
//   - id: a
//     class: x.A
//     order: 1
//     properties:
//       - name: label
//         value: x
//       - name: other
//         ref: b
type yamlBeans struct {
	Beans []yamlBean `yaml:"beans"`
}

type yamlBean struct {
	ID         string         `yaml:"id"`
	Class      string         `yaml:"class"`
	Order      *int           `yaml:"order"`
	Properties []yamlProperty `yaml:"properties"`
}

type yamlProperty struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Ref   string `yaml:"ref"`
}

func NewYamlReader(classes bean.ClassRegistry, opts ...Opt) *baseReader {
	return newBaseReader(classes, parseYaml, opts...)
}

func parseYaml(r io.Reader) ([]beanSpec, error) {
	doc := yamlBeans{}
	err := yaml.NewDecoder(r).Decode(&doc)
	if err != nil && err != io.EOF {
		return nil, err
	}
	ret := make([]beanSpec, 0, len(doc.Beans))
	for _, b := range doc.Beans {
		spec := beanSpec{
			id:    b.ID,
			class: b.Class,
			order: b.Order,
		}
		for _, p := range b.Properties {
			spec.properties = append(spec.properties, propertySpec{
				name:  p.Name,
				value: p.Value,
				ref:   p.Ref,
			})
		}
		ret = append(ret, spec)
	}
	return ret, nil
}
