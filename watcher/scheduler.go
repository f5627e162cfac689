// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"

	"github.com/tochemey/remotewatch/log"
)

const (
	heartbeatTickKey = "watcher-heartbeat-tick"
	reapTickKey      = "watcher-reap-unreachable-tick"
)

// scheduler delivers the periodic ticks and the delayed messages of the watcher
type scheduler struct {
	mu              sync.Mutex
	quartzScheduler quartz.Scheduler
	logger          log.Logger
	ticking         bool
	stopTimeout     time.Duration
}

func newScheduler(logger log.Logger, stopTimeout time.Duration) (*scheduler, error) {
	quartzScheduler, err := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	if err != nil {
		return nil, err
	}

	return &scheduler{
		quartzScheduler: quartzScheduler,
		logger:          logger,
		stopTimeout:     stopTimeout,
	}, nil
}

// Start starts the scheduler
func (x *scheduler) Start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.quartzScheduler.Start(ctx)
}

// Stop discards every job and waits for the running ones to complete
func (x *scheduler) Stop(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.quartzScheduler.IsStarted() {
		return
	}

	_ = x.quartzScheduler.Clear()
	x.quartzScheduler.Stop()
	x.ticking = false

	ctx, cancel := context.WithTimeout(ctx, x.stopTimeout)
	defer cancel()
	x.quartzScheduler.Wait(ctx)
}

// StartTicks schedules the periodic heartbeat and reap ticks.
// It is a no-op when the ticks are already scheduled.
func (x *scheduler) StartTicks(heartbeatInterval, reapInterval time.Duration, tell func(msg any) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.ticking {
		return nil
	}

	if err := x.scheduleRepeated(heartbeatTickKey, heartbeatInterval, func() error { return tell(&HeartbeatTick{}) }); err != nil {
		return err
	}

	if err := x.scheduleRepeated(reapTickKey, reapInterval, func() error { return tell(&ReapUnreachableTick{}) }); err != nil {
		_ = x.quartzScheduler.DeleteJob(quartz.NewJobKey(heartbeatTickKey))
		return err
	}

	x.ticking = true
	x.logger.Debugf("watcher ticks scheduled (heartbeat=%s, reaper=%s)", heartbeatInterval, reapInterval)
	return nil
}

// StopTicks cancels the periodic ticks
func (x *scheduler) StopTicks() {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.ticking {
		return
	}

	_ = x.quartzScheduler.DeleteJob(quartz.NewJobKey(heartbeatTickKey))
	_ = x.quartzScheduler.DeleteJob(quartz.NewJobKey(reapTickKey))
	x.ticking = false
	x.logger.Debug("watcher ticks cancelled")
}

// Ticking reports whether the periodic ticks are scheduled
func (x *scheduler) Ticking() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.ticking
}

// ScheduleOnce delivers msg once after delay
func (x *scheduler) ScheduleOnce(msg any, delay time.Duration, tell func(msg any) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.quartzScheduler.IsStarted() {
		return nil
	}

	once := job.NewFunctionJob[bool](func(context.Context) (bool, error) {
		err := tell(msg)
		return err == nil, err
	})

	detail := quartz.NewJobDetail(once, quartz.NewJobKey(uuid.NewString()))
	return x.quartzScheduler.ScheduleJob(detail, quartz.NewRunOnceTrigger(delay))
}

func (x *scheduler) scheduleRepeated(key string, interval time.Duration, fn func() error) error {
	tick := job.NewFunctionJob[bool](func(context.Context) (bool, error) {
		err := fn()
		return err == nil, err
	})

	detail := quartz.NewJobDetail(tick, quartz.NewJobKey(key))
	return x.quartzScheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(interval))
}
