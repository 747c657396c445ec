package bgtask

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stleox/gqlspan/pkg/config"
)

// FlushTask periodically flushes buffered span records to the OLAP store,
// so a quiet middleware doesn't sit on a half-filled bulk-insert batch.
type FlushTask struct {
	m *BgTaskManager
}

func (m *BgTaskManager) addFlushTask() {
	m.bgTasks = append(m.bgTasks, &FlushTask{m: m})
}

func (t *FlushTask) Run() {
	t.m.mw.Flush()
}

func (t *FlushTask) Start() {
	c := cron.New()
	_, err := c.AddJob("@every "+config.FlushInterval.String(), t)
	if err != nil {
		logrus.Warn("GqlSpan couldn't add flush task")
		return
	}
	c.Start()
}
