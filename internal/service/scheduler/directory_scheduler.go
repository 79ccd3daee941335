// Package scheduler 定时预创建当月上传目录
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/weiwangfds/redactor-upload/internal/logger"
)

// DefaultSpec 每月1日 00:05 执行
const DefaultSpec = "5 0 1 * *"

// DirectoryPreparer 能够创建当前年月目录的服务
type DirectoryPreparer interface {
	PrepareCurrentDirectory() (string, error)
}

// DirectoryScheduler 按cron表达式调用 PrepareCurrentDirectory
type DirectoryScheduler struct {
	cron     *cron.Cron
	preparer DirectoryPreparer
	spec     string

	mu      sync.Mutex
	running bool
	entryID cron.EntryID
}

// NewDirectoryScheduler 创建调度器，spec为空时使用DefaultSpec
func NewDirectoryScheduler(preparer DirectoryPreparer, spec string) *DirectoryScheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &DirectoryScheduler{
		cron:     cron.New(),
		preparer: preparer,
		spec:     spec,
	}
}

// Start 立即执行一次并启动定时任务
func (s *DirectoryScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("directory scheduler already running")
	}

	id, err := s.cron.AddFunc(s.spec, s.RunOnce)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}
	s.entryID = id

	s.RunOnce()
	s.cron.Start()
	s.running = true

	logger.Infof("目录预创建任务已启动, cron: %s", s.spec)
	return nil
}

// Stop 停止定时任务并等待正在执行的任务完成
func (s *DirectoryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.running = false
	logger.Info("目录预创建任务已停止")
}

// RunOnce 执行一次目录预创建，失败只记录日志
func (s *DirectoryScheduler) RunOnce() {
	dir, err := s.preparer.PrepareCurrentDirectory()
	if err != nil {
		logger.Errorf("预创建上传目录失败: %v", err)
		return
	}
	logger.Debugf("上传目录已就绪: %s", dir)
}
