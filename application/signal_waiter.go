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

package application

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/xfali/xlog"
)

type SignalWaiter interface {
	// Wait 等待退出信号
	// 参数 ctx: ctx Done时同样退出并返回ctx.Err()
	// 返回 err: 收到退出信号或者Stop时返回nil
	Wait(ctx context.Context) (err error)

	// Notify 主动发送信号
	Notify(signal os.Signal)

	// Stop 强制结束等待
	Stop()
}

type SignalWaiterOpt func(*defaultWaiter)

type defaultWaiter struct {
	logger  xlog.Logger
	exit    map[os.Signal]struct{}
	ignore  map[os.Signal]struct{}
	signals []os.Signal
	ch      chan os.Signal
	stop    chan struct{}

	stopOnce sync.Once
}

func NewSignalWaiter(opts ...SignalWaiterOpt) *defaultWaiter {
	ret := &defaultWaiter{
		logger: xlog.GetLogger(),
		exit:   map[os.Signal]struct{}{},
		ignore: map[os.Signal]struct{}{},
		ch:     make(chan os.Signal, 1),
		stop:   make(chan struct{}),
	}
	OptAddExitSignals(syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)(ret)
	OptAddIgnoreSignals(syscall.SIGHUP)(ret)
	for _, opt := range opts {
		opt(ret)
	}
	signal.Notify(ret.ch, ret.signals...)
	return ret
}

func OptSetWaiterLogger(logger xlog.Logger) SignalWaiterOpt {
	return func(w *defaultWaiter) {
		w.logger = logger
	}
}

func OptAddExitSignals(signals ...os.Signal) SignalWaiterOpt {
	return func(w *defaultWaiter) {
		for _, s := range signals {
			w.exit[s] = struct{}{}
			w.signals = append(w.signals, s)
		}
	}
}

func OptAddIgnoreSignals(signals ...os.Signal) SignalWaiterOpt {
	return func(w *defaultWaiter) {
		for _, s := range signals {
			w.ignore[s] = struct{}{}
			w.signals = append(w.signals, s)
		}
	}
}

func (w *defaultWaiter) Wait(ctx context.Context) error {
	defer signal.Stop(w.ch)
	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Context done, error: %v, closing...\n", ctx.Err())
			return ctx.Err()
		case <-w.stop:
			return nil
		case si := <-w.ch:
			if _, ok := w.ignore[si]; ok {
				w.logger.Infof("Ignore signal %s\n", si.String())
				continue
			}
			w.logger.Infof("Got a signal %s, closing...\n", si.String())
			return nil
		}
	}
}

func (w *defaultWaiter) Notify(signal os.Signal) {
	select {
	case w.ch <- signal:
	default:
	}
}

func (w *defaultWaiter) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}
