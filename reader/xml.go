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
	"encoding/xml"
	"io"
	"strconv"

	"github.com/DHcurry/tiny-spring/bean"
)

// <beans>
//   <bean id="a" class="x.A" order="1">
//     <property name="label" value="x"/>
//     <property name="other" ref="b"/>
//   </bean>
// </beans>
type xmlBeans struct {
	Beans []xmlBean `xml:"bean"`
}

type xmlBean struct {
	ID         string        `xml:"id,attr"`
	Class      string        `xml:"class,attr"`
	Order      string        `xml:"order,attr"`
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
	Ref   string `xml:"ref,attr"`
}

func NewXmlReader(classes bean.ClassRegistry, opts ...Opt) *baseReader {
	return newBaseReader(classes, parseXml, opts...)
}

func parseXml(r io.Reader) ([]beanSpec, error) {
	doc := xmlBeans{}
	err := xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, err
	}
	ret := make([]beanSpec, 0, len(doc.Beans))
	for _, b := range doc.Beans {
		spec := beanSpec{
			id:    b.ID,
			class: b.Class,
		}
		if b.Order != "" {
			order, err := strconv.Atoi(b.Order)
			if err != nil {
				return nil, err
			}
			spec.order = &order
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
