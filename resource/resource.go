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

package resource

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	// 资源根目录环境变量，优先级高于OptSetRoot
	EnvResourceDir = "ENV_RESOURCE_DIR"

	defaultHttpTimeout = 30 * time.Second
)

type Resource interface {
	// 资源位置
	Location() string

	// 打开资源，调用方负责关闭
	Open() (io.ReadCloser, error)
}

type Loader interface {
	// 支持http(s)://、file://以及本地路径，相对路径基于资源根目录
	GetResource(location string) (Resource, error)
}

type defaultLoader struct {
	root   string
	client *http.Client
}

type Opt func(*defaultLoader)

func NewLoader(opts ...Opt) *defaultLoader {
	ret := &defaultLoader{
		client: &http.Client{Timeout: defaultHttpTimeout},
	}
	for _, opt := range opts {
		opt(ret)
	}
	if dir := os.Getenv(EnvResourceDir); dir != "" {
		ret.root = dir
	}
	return ret
}

func OptSetRoot(dir string) Opt {
	return func(loader *defaultLoader) {
		loader.root = dir
	}
}

func OptSetHttpClient(client *http.Client) Opt {
	return func(loader *defaultLoader) {
		if client != nil {
			loader.client = client
		}
	}
}

func (l *defaultLoader) Root() string {
	return l.root
}

func (l *defaultLoader) GetResource(location string) (Resource, error) {
	if location == "" {
		return nil, errors.New("Resource location is empty. ")
	}
	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return &urlResource{location: location, client: l.client}, nil
		case "file":
			return &fileResource{path: u.Path}, nil
		}
	}
	path := location
	if !filepath.IsAbs(path) && l.root != "" {
		path = filepath.Join(l.root, path)
	}
	return &fileResource{path: path}, nil
}

type fileResource struct {
	path string
}

func (r *fileResource) Location() string {
	return r.path
}

func (r *fileResource) Open() (io.ReadCloser, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, errors.Wrapf(err, "open resource %s", r.path)
	}
	return f, nil
}

type urlResource struct {
	location string
	client   *http.Client
}

func (r *urlResource) Location() string {
	return r.location
}

func (r *urlResource) Open() (io.ReadCloser, error) {
	resp, err := r.client.Get(r.location)
	if err != nil {
		return nil, errors.Wrapf(err, "get resource %s", r.location)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()
		return nil, errors.Errorf("get resource %s failed, status: %s", r.location, resp.Status)
	}
	return resp.Body, nil
}
