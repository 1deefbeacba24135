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

package tinyspring

import (
	"context"
	"os"
	"strings"

	"github.com/DHcurry/tiny-spring/appcontext"
	"github.com/DHcurry/tiny-spring/application"
	"github.com/DHcurry/tiny-spring/bean"
	"github.com/DHcurry/tiny-spring/reader"
	"github.com/DHcurry/tiny-spring/resource"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/xfali/fig"
	"github.com/xfali/xlog"
)

const (
	KeyBeansLocation = "tinyioc.beans.location"
	KeyResourceRoot  = "tinyioc.resource.root"

	defaultBeansLocation = "beans.xml"
	defaultEnvFile       = ".env"
)

type Application interface {
	// 注册class，bean定义中的class属性使用该名称
	RegisterClass(name string, constructor interface{}, opts ...bean.ClassOpt) error

	// 刷新容器，创建所有bean
	Start() error

	// 刷新容器并等待退出信号，退出时关闭容器
	Run() error

	GetContext() appcontext.ApplicationContext

	Close() error
}

type FileConfigApplication struct {
	config  fig.Properties
	logger  xlog.Logger
	classes bean.ClassRegistry
	ctx     appcontext.ApplicationContext
	waiter  application.SignalWaiter

	envFile string
	ctxOpts []appcontext.Opt
}

type Opt func(*FileConfigApplication)

func NewFileConfigApplication(configPath string, opts ...Opt) (*FileConfigApplication, error) {
	ret := &FileConfigApplication{
		logger:  xlog.GetLogger(),
		envFile: defaultEnvFile,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.classes == nil {
		ret.classes = bean.NewClassRegistry()
	}

	if _, err := os.Stat(ret.envFile); err == nil {
		err = godotenv.Load(ret.envFile)
		if err != nil {
			return nil, errors.Wrapf(err, "load env file %s", ret.envFile)
		}
	}

	prop, err := fig.LoadYamlFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "load config file %s", configPath)
	}
	ret.config = prop

	loader := resource.NewLoader(resource.OptSetRoot(prop.Get(KeyResourceRoot, "")))
	ctxOpts := []appcontext.Opt{
		appcontext.OptSetConfig(prop),
		appcontext.OptSetLogger(ret.logger),
	}
	for _, location := range splitLocations(prop.Get(KeyBeansLocation, defaultBeansLocation)) {
		r, err := reader.NewReaderByLocation(location, ret.classes,
			reader.OptSetResourceLoader(loader),
			reader.OptSetLogger(ret.logger))
		if err != nil {
			return nil, err
		}
		ctxOpts = append(ctxOpts, appcontext.OptAddDefinitions(r, location))
	}
	ret.ctx = appcontext.NewDefaultApplicationContext(append(ctxOpts, ret.ctxOpts...)...)
	return ret, nil
}

func splitLocations(s string) []string {
	var ret []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

func OptSetClassRegistry(classes bean.ClassRegistry) Opt {
	return func(app *FileConfigApplication) {
		app.classes = classes
	}
}

func OptSetLogger(logger xlog.Logger) Opt {
	return func(app *FileConfigApplication) {
		app.logger = logger
	}
}

// .env文件路径，文件不存在时忽略
func OptSetEnvFile(path string) Opt {
	return func(app *FileConfigApplication) {
		app.envFile = path
	}
}

func OptSetSignalWaiter(waiter application.SignalWaiter) Opt {
	return func(app *FileConfigApplication) {
		app.waiter = waiter
	}
}

// 追加ApplicationContext配置
func OptAddContextOpts(opts ...appcontext.Opt) Opt {
	return func(app *FileConfigApplication) {
		app.ctxOpts = append(app.ctxOpts, opts...)
	}
}

func (app *FileConfigApplication) RegisterClass(name string, constructor interface{}, opts ...bean.ClassOpt) error {
	_, err := app.classes.RegisterClass(name, constructor, opts...)
	return err
}

func (app *FileConfigApplication) GetContext() appcontext.ApplicationContext {
	return app.ctx
}

func (app *FileConfigApplication) GetConfig() fig.Properties {
	return app.config
}

func (app *FileConfigApplication) Start() error {
	return app.ctx.Refresh()
}

func (app *FileConfigApplication) Run() error {
	return app.RunWithContext(context.Background())
}

func (app *FileConfigApplication) RunWithContext(ctx context.Context) error {
	err := app.Start()
	if err != nil {
		return err
	}
	waiter := app.waiter
	if waiter == nil {
		waiter = application.NewSignalWaiter(application.OptSetWaiterLogger(app.logger))
	}
	err = waiter.Wait(ctx)
	if err != nil {
		app.logger.Infoln("Wait finished: ", err)
	}
	return app.Close()
}

func (app *FileConfigApplication) Close() error {
	return app.ctx.Close()
}
