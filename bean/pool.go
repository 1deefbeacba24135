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
	"sync"

	"github.com/xfali/goutils/container/skiplist"
)

const (
	defaultPoolSize = 128
	defaultOrder    = 0
)

type elem struct {
	def      *Definition
	order    int
	orderSet bool
}

func newElem(def *Definition, opts ...RegisterOpt) *elem {
	ret := &elem{
		def:   def,
		order: defaultOrder,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (e *elem) Set(key string, value interface{}) {
	if key == KeySetOrder {
		e.order = value.(int)
		e.orderSet = true
	}
}

// 按(order, 注册顺序)排列的定义池
type pool struct {
	l *skiplist.SkipList
	m map[string]*elem

	k     []string
	dirty bool

	locker sync.Mutex
}

func newPool(initSize int) *pool {
	return &pool{
		m: make(map[string]*elem, initSize),
		l: skiplist.New(skiplist.SetKeyCompareFunc(skiplist.CompareInt)),
	}
}

func (p *pool) keys() []string {
	p.locker.Lock()
	defer p.locker.Unlock()

	if !p.dirty {
		return p.k
	}

	ret := make([]string, 0, len(p.m))
	for x := p.l.First(); x != nil; x = x.Next() {
		ret = append(ret, x.Value().([]string)...)
	}

	p.k = ret
	p.dirty = false

	return ret
}

// 已存在时替换定义并保留原有位置，显式设置了不同的order时移动到新order的末尾
// 返回是否为新名称
func (p *pool) store(name string, e *elem) bool {
	p.locker.Lock()
	defer p.locker.Unlock()

	if v, ok := p.m[name]; ok {
		v.def = e.def
		if e.orderSet && e.order != v.order {
			p.remove(v.order, name)
			p.append(e.order, name)
			v.order = e.order
			p.dirty = true
		}
		return false
	}
	p.append(e.order, name)
	p.m[name] = e
	p.dirty = true
	return true
}

func (p *pool) append(order int, name string) {
	keys := p.l.Get(order)
	if keys == nil {
		keys = []string{name}
	} else {
		keys = append(keys.([]string), name)
	}
	p.l.Set(order, keys)
}

func (p *pool) remove(order int, name string) {
	keys, ok := p.l.Get(order).([]string)
	if !ok {
		return
	}
	ret := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != name {
			ret = append(ret, k)
		}
	}
	if len(ret) == 0 {
		p.l.Delete(order)
	} else {
		p.l.Set(order, ret)
	}
}

func (p *pool) load(name string) (*elem, bool) {
	p.locker.Lock()
	defer p.locker.Unlock()

	v, ok := p.m[name]
	return v, ok
}

func (p *pool) size() int {
	p.locker.Lock()
	defer p.locker.Unlock()

	return len(p.m)
}
