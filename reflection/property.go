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

package reflection

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/DHcurry/tiny-spring/errors"
	xreflection "github.com/xfali/reflection"
)

const (
	// 通过tag指定属性名称，如：Addr string `property:"address"`
	PropertyTagName = "property"

	sliceSeparator = ","
)

var durationType = reflect.TypeOf(time.Duration(0))

// 设置bean的属性
// o必须为struct指针；属性优先匹配tag，其次匹配首字母大写的字段名称
// value可以直接赋值时直接赋值，为string时按字段类型转换
func SetProperty(o interface{}, name string, value interface{}) error {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return errors.Configuration("", "Cannot set property on %s, bean must be a struct pointer", GetObjectTypeName(o)).WithProperty(name)
	}
	v = v.Elem()
	field, ok := FindField(v.Type(), name)
	if !ok {
		return errors.Configuration("", "%s has no property named %s", GetTypeName(v.Type()), name).WithProperty(name)
	}
	// 通过nil的嵌入指针提升的字段无法访问
	fv, err := v.FieldByIndexErr(field.Index)
	if err != nil {
		return errors.Configuration("", "Field %s of %s is not reachable", field.Name, GetTypeName(v.Type())).WithProperty(name).WithCause(err)
	}
	if !fv.CanSet() {
		return errors.Configuration("", "Field %s of %s is not writable", field.Name, GetTypeName(v.Type())).WithProperty(name)
	}
	err = Assign(fv, value)
	if err != nil {
		return errors.PropertyType("", name, err, "")
	}
	return nil
}

func FindField(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if tag, ok := f.Tag.Lookup(PropertyTagName); ok && tag == name {
			return f, true
		}
	}
	if f, ok := t.FieldByName(upperFirst(name)); ok {
		return f, true
	}
	return t.FieldByName(name)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func Assign(dest reflect.Value, value interface{}) error {
	if value == nil {
		dest.Set(reflect.Zero(dest.Type()))
		return nil
	}
	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dest.Type()) {
		dest.Set(src)
		return nil
	}
	if s, ok := value.(string); ok {
		return SetString(dest, s)
	}
	return fmt.Errorf("cannot assign %s to %s", GetTypeName(src.Type()), GetTypeName(dest.Type()))
}

// 将字面值转换为dest的类型并赋值
// 基础类型由xfali/reflection转换，此处补充溢出检查、time.Duration、逗号分隔的slice以及指针
func SetString(dest reflect.Value, s string) error {
	t := dest.Type()
	switch t.Kind() {
	case reflect.Bool:
		return setValue(dest, strings.TrimSpace(s))
	case reflect.String:
		return setValue(dest, s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t == durationType {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			dest.SetInt(int64(d))
			return nil
		}
		tmp := reflect.New(xreflection.Int64Type).Elem()
		if err := setValue(tmp, strings.TrimSpace(s)); err != nil {
			return err
		}
		if dest.OverflowInt(tmp.Int()) {
			return fmt.Errorf("literal %q overflows %s", s, GetTypeName(t))
		}
		dest.SetInt(tmp.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		tmp := reflect.New(xreflection.Uint64Type).Elem()
		if err := setValue(tmp, strings.TrimSpace(s)); err != nil {
			return err
		}
		if dest.OverflowUint(tmp.Uint()) {
			return fmt.Errorf("literal %q overflows %s", s, GetTypeName(t))
		}
		dest.SetUint(tmp.Uint())
	case reflect.Float32, reflect.Float64:
		tmp := reflect.New(xreflection.Float64Type).Elem()
		if err := setValue(tmp, strings.TrimSpace(s)); err != nil {
			return err
		}
		if dest.OverflowFloat(tmp.Float()) {
			return fmt.Errorf("literal %q overflows %s", s, GetTypeName(t))
		}
		dest.SetFloat(tmp.Float())
	case reflect.Struct:
		if !t.ConvertibleTo(xreflection.TimeType) {
			return fmt.Errorf("cannot convert literal %q to %s", s, GetTypeName(t))
		}
		return setValue(dest, strings.TrimSpace(s))
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return setValue(dest, s)
		}
		if s == "" {
			dest.Set(reflect.MakeSlice(t, 0, 0))
			return nil
		}
		parts := strings.Split(s, sliceSeparator)
		sv := reflect.MakeSlice(t, len(parts), len(parts))
		for i := range parts {
			err := SetString(sv.Index(i), strings.TrimSpace(parts[i]))
			if err != nil {
				return err
			}
		}
		dest.Set(sv)
	case reflect.Ptr:
		pv := reflect.New(t.Elem())
		err := SetString(pv.Elem(), s)
		if err != nil {
			return err
		}
		dest.Set(pv)
	default:
		return fmt.Errorf("cannot convert literal %q to %s", s, GetTypeName(t))
	}
	return nil
}

func setValue(dest reflect.Value, s string) error {
	if !xreflection.SetValue(dest, reflect.ValueOf(s)) {
		return fmt.Errorf("cannot convert literal %q to %s", s, GetTypeName(dest.Type()))
	}
	return nil
}
