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

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/DHcurry/tiny-spring/errors"
)

type labelBean struct {
	Label   string
	Count   int
	Timeout time.Duration
	Other   *labelBean
}

type circA struct {
	B *circB
}

type circB struct {
	A *circA
}

type labelBase struct {
	Label string
}

type embedBean struct {
	*labelBase
}

type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

type recordProcessor struct {
	name string
	rec  *recorder

	before func(o interface{}, name string) (interface{}, error)
	after  func(o interface{}, name string) (interface{}, error)
}

func (p *recordProcessor) PostProcessBeforeInitialization(o interface{}, name string) (interface{}, error) {
	p.rec.add("%s.before:%s", p.name, name)
	if p.before != nil {
		return p.before(o, name)
	}
	return o, nil
}

func (p *recordProcessor) PostProcessAfterInitialization(o interface{}, name string) (interface{}, error) {
	p.rec.add("%s.after:%s", p.name, name)
	if p.after != nil {
		return p.after(o, name)
	}
	return o, nil
}

func mustClass(t *testing.T, name string, ctor interface{}, opts ...ClassOpt) *Class {
	c, err := NewClass(name, ctor, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newLabelClass(t *testing.T) *Class {
	return mustClass(t, "labelBean", func() *labelBean { return &labelBean{} })
}

func mustRegister(t *testing.T, f BeanFactory, name string, def *Definition, opts ...RegisterOpt) {
	if err := f.RegisterDefinition(name, def, opts...); err != nil {
		t.Fatal(err)
	}
}

func TestGetBean(t *testing.T) {
	t.Run("singleton", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t)))
		o1, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		o2, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		if o1 != o2 {
			t.Fatal("expect same instance")
		}
	})

	t.Run("literal", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t),
			NewPropertyValue("label", "x"),
			NewPropertyValue("count", "42"),
			NewPropertyValue("timeout", "3s")))
		o, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		a := o.(*labelBean)
		if a.Label != "x" || a.Count != 42 || a.Timeout != 3*time.Second {
			t.Fatalf("unexpected bean: %+v", a)
		}
	})

	t.Run("reference", func(t *testing.T) {
		f := NewBeanFactory()
		class := newLabelClass(t)
		mustRegister(t, f, "a", NewDefinition(class, NewPropertyValue("label", "x")))
		mustRegister(t, f, "b", NewDefinition(class, NewReferenceValue("other", "a")))

		b, err := f.GetBean("b")
		if err != nil {
			t.Fatal(err)
		}
		a, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		if b.(*labelBean).Other != a {
			t.Fatal("b.other must be bean a")
		}
		if a.(*labelBean).Label != "x" {
			t.Fatal("expect x but get: ", a.(*labelBean).Label)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t)))
		_, err := f.GetBean("missing")
		if !errors.IsUnknownBean(err) {
			t.Fatal("expect unknown bean error but get: ", err)
		}
		if !reflect.DeepEqual(f.DefinitionNames(), []string{"a"}) {
			t.Fatal("registry changed: ", f.DefinitionNames())
		}
		if f.ContainsDefinition("missing") {
			t.Fatal("missing must not be registered")
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "b", NewDefinition(newLabelClass(t), NewReferenceValue("other", "a")))
		_, err := f.GetBean("b")
		if !errors.IsUnknownBean(err) {
			t.Fatal("expect unknown bean error but get: ", err)
		}
		def, _ := f.GetDefinition("b")
		if _, ok := def.Bean(); ok {
			t.Fatal("failed bean must not be cached")
		}
	})
}

func TestCircularReference(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(mustClass(t, "circA", func() *circA { return &circA{} }),
			NewReferenceValue("b", "b")))
		mustRegister(t, f, "b", NewDefinition(mustClass(t, "circB", func() *circB { return &circB{} }),
			NewReferenceValue("a", "a")))

		o, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		a := o.(*circA)
		if a.B == nil || a.B.A != a {
			t.Fatal("a.b.a must be a")
		}
		b, _ := f.GetBean("b")
		if b != a.B {
			t.Fatal("a.b must be bean b")
		}
	})

	t.Run("partially initialized", func(t *testing.T) {
		rec := &recorder{}
		f := NewBeanFactory()
		f.AddPostProcessor(&recordProcessor{
			name: "check",
			rec:  rec,
			before: func(o interface{}, name string) (interface{}, error) {
				if b, ok := o.(*circB); ok {
					// a is exposed but b is not injected into a yet
					if b.A == nil || b.A.B != nil {
						return nil, stderrors.New("expect early exposed a")
					}
				}
				return o, nil
			},
		})
		mustRegister(t, f, "a", NewDefinition(mustClass(t, "circA", func() *circA { return &circA{} }),
			NewReferenceValue("b", "b")))
		mustRegister(t, f, "b", NewDefinition(mustClass(t, "circB", func() *circB { return &circB{} }),
			NewReferenceValue("a", "a")))

		_, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		expect := []string{"check.before:b", "check.after:b", "check.before:a", "check.after:a"}
		if !reflect.DeepEqual(rec.events, expect) {
			t.Fatal("unexpected events: ", rec.events)
		}
	})

	t.Run("dependent keeps bare instance", func(t *testing.T) {
		var bare *circA
		f := NewBeanFactory()
		f.AddPostProcessor(&recordProcessor{
			name: "wrap",
			rec:  &recorder{},
			after: func(o interface{}, name string) (interface{}, error) {
				if a, ok := o.(*circA); ok {
					bare = a
					cp := *a
					return &cp, nil
				}
				return o, nil
			},
		})
		mustRegister(t, f, "a", NewDefinition(mustClass(t, "circA", func() *circA { return &circA{} }),
			NewReferenceValue("b", "b")))
		mustRegister(t, f, "b", NewDefinition(mustClass(t, "circB", func() *circB { return &circB{} }),
			NewReferenceValue("a", "a")))

		o, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		a := o.(*circA)
		if a == bare {
			t.Fatal("a must be replaced by post processor")
		}
		if a.B.A != bare {
			t.Fatal("b must keep the early exposed a")
		}
		again, _ := f.GetBean("a")
		if again != a {
			t.Fatal("a must be the post processed instance")
		}
	})

	t.Run("self reference", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t), NewReferenceValue("other", "a")))
		o, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		if o.(*labelBean).Other != o {
			t.Fatal("a.other must be a")
		}
	})
}

func TestPostProcessor(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		rec := &recorder{}
		f := NewBeanFactory()
		f.AddPostProcessor(&recordProcessor{name: "H1", rec: rec})
		f.AddPostProcessor(&recordProcessor{name: "H2", rec: rec})
		mustRegister(t, f, "x", NewDefinition(newLabelClass(t)))
		mustRegister(t, f, "y", NewDefinition(newLabelClass(t)))
		err := f.PreInstantiateSingletons()
		if err != nil {
			t.Fatal(err)
		}
		expect := []string{
			"H1.before:x", "H2.before:x", "H1.after:x", "H2.after:x",
			"H1.before:y", "H2.before:y", "H1.after:y", "H2.after:y",
		}
		if !reflect.DeepEqual(rec.events, expect) {
			t.Fatal("unexpected events: ", rec.events)
		}
	})

	t.Run("replace and nil", func(t *testing.T) {
		replaced := &labelBean{Label: "replaced"}
		f := NewBeanFactory()
		f.AddPostProcessor(&recordProcessor{
			name: "replace",
			rec:  &recorder{},
			before: func(o interface{}, name string) (interface{}, error) {
				return replaced, nil
			},
			after: func(o interface{}, name string) (interface{}, error) {
				return nil, nil
			},
		})
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t)))
		o, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		if o != replaced {
			t.Fatal("expect replaced instance")
		}
	})

	t.Run("hook error", func(t *testing.T) {
		f := NewBeanFactory()
		f.AddPostProcessor(&recordProcessor{
			name: "fail",
			rec:  &recorder{},
			after: func(o interface{}, name string) (interface{}, error) {
				return nil, stderrors.New("boom")
			},
		})
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t)))
		_, err := f.GetBean("a")
		if !errors.IsHook(err) {
			t.Fatal("expect hook error but get: ", err)
		}
		def, _ := f.GetDefinition("a")
		if _, ok := def.Bean(); ok {
			t.Fatal("failed bean must not be cached")
		}
	})
}

type lifecycleBean struct {
	name string
	rec  *recorder
}

func (b *lifecycleBean) SetProperty(name string, value interface{}) error {
	if name != "name" {
		return fmt.Errorf("unknown property %s", name)
	}
	b.name = value.(string)
	return nil
}

func (b *lifecycleBean) BeanAfterSet() error {
	b.rec.add("afterSet:%s", b.name)
	return nil
}

func (b *lifecycleBean) BeanDestroy() error {
	b.rec.add("destroy:%s", b.name)
	return nil
}

func TestLifecycle(t *testing.T) {
	rec := &recorder{}
	f := NewBeanFactory()
	f.AddPostProcessor(&recordProcessor{name: "H", rec: rec})
	class := mustClass(t, "lifecycle", func() *lifecycleBean { return &lifecycleBean{rec: rec} })
	mustRegister(t, f, "first", NewDefinition(class, NewPropertyValue("name", "first")))
	mustRegister(t, f, "second", NewDefinition(class, NewPropertyValue("name", "second")))

	err := f.PreInstantiateSingletons()
	if err != nil {
		t.Fatal(err)
	}
	err = f.DestroySingletons()
	if err != nil {
		t.Fatal(err)
	}
	expect := []string{
		"H.before:first", "afterSet:first", "H.after:first",
		"H.before:second", "afterSet:second", "H.after:second",
		"destroy:second", "destroy:first",
	}
	if !reflect.DeepEqual(rec.events, expect) {
		t.Fatal("unexpected events: ", rec.events)
	}
	def, _ := f.GetDefinition("first")
	if _, ok := def.Bean(); ok {
		t.Fatal("destroyed bean must be removed from slot")
	}

	t.Run("setter error", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "x", NewDefinition(class, NewPropertyValue("other", "x")))
		_, err := f.GetBean("x")
		if !errors.IsPropertyType(err) {
			t.Fatal("expect property type error but get: ", err)
		}
	})
}

func TestCreateFailure(t *testing.T) {
	t.Run("coercion", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t), NewPropertyValue("count", "abc")))
		for i := 0; i < 2; i++ {
			_, err := f.GetBean("a")
			if !errors.IsPropertyType(err) {
				t.Fatal("expect property type error but get: ", err)
			}
			var be *errors.BeanError
			if !stderrors.As(err, &be) || be.BeanName != "a" || be.Property != "count" {
				t.Fatal("unexpected error: ", err)
			}
		}
	})

	t.Run("no such property", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t), NewPropertyValue("nothing", "abc")))
		_, err := f.GetBean("a")
		if !errors.IsConfiguration(err) {
			t.Fatal("expect configuration error but get: ", err)
		}
	})

	t.Run("reference type mismatch", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "b", NewDefinition(mustClass(t, "circB", func() *circB { return &circB{} })))
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t), NewReferenceValue("other", "b")))
		_, err := f.GetBean("a")
		if !errors.IsPropertyType(err) {
			t.Fatal("expect property type error but get: ", err)
		}
	})

	t.Run("instantiation", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(mustClass(t, "broken", func() (*labelBean, error) {
			return nil, stderrors.New("broken")
		})))
		mustRegister(t, f, "b", NewDefinition(mustClass(t, "nil", func() *labelBean {
			return nil
		})))
		_, err := f.GetBean("a")
		if !errors.IsInstantiation(err) {
			t.Fatal("expect instantiation error but get: ", err)
		}
		_, err = f.GetBean("b")
		if !errors.IsInstantiation(err) {
			t.Fatal("expect instantiation error but get: ", err)
		}
	})

	t.Run("nil embedded pointer", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "e", NewDefinition(mustClass(t, "embed", func() *embedBean { return &embedBean{} }),
			NewPropertyValue("label", "x")))
		_, err := f.GetBean("e")
		if !errors.IsConfiguration(err) {
			t.Fatal("expect configuration error but get: ", err)
		}
		def, _ := f.GetDefinition("e")
		if _, ok := def.Bean(); ok {
			t.Fatal("failed bean must not be cached")
		}
	})

	t.Run("panic resets slot", func(t *testing.T) {
		var bare *labelBean
		panicked := false
		f := NewBeanFactory()
		f.AddPostProcessor(&recordProcessor{
			name: "panic",
			rec:  &recorder{},
			before: func(o interface{}, name string) (interface{}, error) {
				if !panicked {
					panicked = true
					bare = o.(*labelBean)
					panic("boom")
				}
				return o, nil
			},
		})
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t)))
		func() {
			defer func() {
				if recover() == nil {
					t.Fatal("expect panic")
				}
			}()
			f.GetBean("a")
		}()
		def, _ := f.GetDefinition("a")
		if _, ok := def.Bean(); ok {
			t.Fatal("slot must be reset after panic")
		}
		o, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		if o == bare || !def.IsComplete() {
			t.Fatal("expect a new completed instance")
		}
	})

	t.Run("cyclic dependent keeps bare instance on failure", func(t *testing.T) {
		var bare *circA
		f := NewBeanFactory()
		f.AddPostProcessor(&recordProcessor{
			name: "fail",
			rec:  &recorder{},
			after: func(o interface{}, name string) (interface{}, error) {
				if name == "a" {
					return nil, stderrors.New("boom")
				}
				return o, nil
			},
		})
		mustRegister(t, f, "a", NewDefinition(mustClass(t, "circA", func() *circA {
			bare = &circA{}
			return bare
		}), NewReferenceValue("b", "b")))
		mustRegister(t, f, "b", NewDefinition(mustClass(t, "circB", func() *circB { return &circB{} }),
			NewReferenceValue("a", "a")))

		_, err := f.GetBean("a")
		if !errors.IsHook(err) {
			t.Fatal("expect hook error but get: ", err)
		}
		a, _ := f.GetDefinition("a")
		if _, ok := a.Bean(); ok {
			t.Fatal("a must not be cached")
		}
		b, _ := f.GetDefinition("b")
		if !b.IsComplete() {
			t.Fatal("b must be complete")
		}
		o, _ := b.Bean()
		if o.(*circB).A != bare {
			t.Fatal("b must keep the early exposed a")
		}
	})

	t.Run("preinstantiate stops at first error", func(t *testing.T) {
		f := NewBeanFactory()
		mustRegister(t, f, "a", NewDefinition(newLabelClass(t)))
		mustRegister(t, f, "b", NewDefinition(newLabelClass(t), NewPropertyValue("count", "abc")))
		mustRegister(t, f, "c", NewDefinition(newLabelClass(t)))
		err := f.PreInstantiateSingletons()
		if !errors.IsPropertyType(err) {
			t.Fatal("expect property type error but get: ", err)
		}
		a, _ := f.GetDefinition("a")
		c, _ := f.GetDefinition("c")
		if !a.IsComplete() || c.IsComplete() {
			t.Fatal("a must be created and c must not")
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Run("overwrite keeps order", func(t *testing.T) {
		f := NewBeanFactory()
		class := newLabelClass(t)
		mustRegister(t, f, "a", NewDefinition(class, NewPropertyValue("label", "1")))
		mustRegister(t, f, "b", NewDefinition(class))
		mustRegister(t, f, "a", NewDefinition(class, NewPropertyValue("label", "2")))
		if !reflect.DeepEqual(f.DefinitionNames(), []string{"a", "b"}) {
			t.Fatal("unexpected names: ", f.DefinitionNames())
		}
		o, err := f.GetBean("a")
		if err != nil {
			t.Fatal(err)
		}
		if o.(*labelBean).Label != "2" {
			t.Fatal("expect 2 but get: ", o.(*labelBean).Label)
		}
	})

	t.Run("order", func(t *testing.T) {
		f := NewBeanFactory()
		class := newLabelClass(t)
		mustRegister(t, f, "a", NewDefinition(class))
		mustRegister(t, f, "b", NewDefinition(class))
		mustRegister(t, f, "c", NewDefinition(class), SetOrder(-1))
		mustRegister(t, f, "d", NewDefinition(class), SetOrder(1))
		mustRegister(t, f, "e", NewDefinition(class))
		if !reflect.DeepEqual(f.DefinitionNames(), []string{"c", "a", "b", "e", "d"}) {
			t.Fatal("unexpected names: ", f.DefinitionNames())
		}
	})

	t.Run("overwrite with order", func(t *testing.T) {
		f := NewBeanFactory()
		class := newLabelClass(t)
		mustRegister(t, f, "a", NewDefinition(class))
		mustRegister(t, f, "b", NewDefinition(class))
		mustRegister(t, f, "c", NewDefinition(class))
		mustRegister(t, f, "c", NewDefinition(class), SetOrder(-1))
		if !reflect.DeepEqual(f.DefinitionNames(), []string{"c", "a", "b"}) {
			t.Fatal("unexpected names: ", f.DefinitionNames())
		}
		mustRegister(t, f, "c", NewDefinition(class, NewPropertyValue("label", "2")))
		mustRegister(t, f, "a", NewDefinition(class), SetOrder(0))
		if !reflect.DeepEqual(f.DefinitionNames(), []string{"c", "a", "b"}) {
			t.Fatal("unexpected names: ", f.DefinitionNames())
		}
		mustRegister(t, f, "c", NewDefinition(class), SetOrder(0))
		if !reflect.DeepEqual(f.DefinitionNames(), []string{"a", "b", "c"}) {
			t.Fatal("unexpected names: ", f.DefinitionNames())
		}
	})

	t.Run("malformed", func(t *testing.T) {
		f := NewBeanFactory()
		if err := f.RegisterDefinition("a", nil); !errors.IsConfiguration(err) {
			t.Fatal("expect configuration error but get: ", err)
		}
		if err := f.RegisterDefinition("a", NewDefinition(nil)); !errors.IsConfiguration(err) {
			t.Fatal("expect configuration error but get: ", err)
		}
		if err := f.RegisterDefinition("", NewDefinition(newLabelClass(t))); !errors.IsConfiguration(err) {
			t.Fatal("expect configuration error but get: ", err)
		}
		if len(f.DefinitionNames()) != 0 {
			t.Fatal("registry must be empty")
		}
	})
}

type hookBean struct {
	recordProcessor
}

func TestGetBeansOfCapability(t *testing.T) {
	rec := &recorder{}
	marker := NewCapability("marker")
	f := NewBeanFactory()
	hookClass := mustClass(t, "hook", func() *hookBean {
		return &hookBean{recordProcessor{name: "hook", rec: rec}}
	})
	mustRegister(t, f, "plain", NewDefinition(newLabelClass(t)))
	mustRegister(t, f, "h2", NewDefinition(hookClass))
	mustRegister(t, f, "tagged", NewDefinition(mustClass(t, "tagged", func() *labelBean { return &labelBean{} }, Tag(marker))))
	mustRegister(t, f, "h1", NewDefinition(hookClass), SetOrder(-1))

	hooks, err := f.GetBeansOfCapability(PostProcessorCapability)
	if err != nil {
		t.Fatal(err)
	}
	h1, _ := f.GetBean("h1")
	h2, _ := f.GetBean("h2")
	if len(hooks) != 2 || hooks[0] != h1 || hooks[1] != h2 {
		t.Fatal("unexpected hooks: ", hooks)
	}
	plain, _ := f.GetDefinition("plain")
	if plain.IsComplete() {
		t.Fatal("plain must not be created")
	}

	tagged, err := f.GetBeansOfCapability(marker)
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 {
		t.Fatal("expect 1 tagged bean but get: ", len(tagged))
	}
}
