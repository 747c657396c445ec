package bgtask

import (
	pkgtracer "github.com/stleox/gqlspan/pkg/tracer"
)

// BgTaskManager manages background periodical tasks.
// Includes:
// - Flush the OLAP bulk inserter
type BgTaskManager struct {
	bgTasks []BgTask
	mw      *pkgtracer.Middleware
}

type BgTask interface {
	Start()
}

func NewBgTaskManager(mw *pkgtracer.Middleware) *BgTaskManager {
	m := &BgTaskManager{
		bgTasks: make([]BgTask, 0),
		mw:      mw,
	}
	m.addFlushTask()
	return m
}

func (m *BgTaskManager) StartAll() {
	for _, task := range m.bgTasks {
		task.Start()
	}
}
