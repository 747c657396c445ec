package tracer

import (
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stleox/gqlspan/pkg/config"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// SpanRecord is the archived form of one finished span.
type SpanRecord struct {
	TraceID      string    `db:"trace_id"`
	SpanID       string    `db:"span_id"`
	ParentSpanID string    `db:"parent_span_id"`
	Path         string    `db:"path"` // canonical path key, empty for the root
	Name         string    `db:"name"`
	StartTime    time.Time `db:"start_time"`
	EndTime      time.Time `db:"end_time"`
}

type Olap struct {
	conn         sqlx.SqlConn
	spanInserter *sqlx.BulkInserter

	// 异常请求列表：finish 闭包被丢弃、被迫强制关闭的请求
	listExRequest []*RequestTrace
	muExRequest   sync.Mutex
}

func NewOlap(vp *viper.Viper) *Olap {
	// conn to the OLAP server
	olapDSN := vp.GetString("GQLSPAN_OLAP_DSN")
	if olapDSN == "" {
		olapDSN = config.GQLSPAN_DEFAULT_DSN
	}

	db := sqlx.NewMysql(olapDSN)

	if err := CreateSpanTable(db); err != nil {
		logrus.WithError(err).Error("GqlSpan couldn't create table t_Span")
		return nil
	}

	spanInserter, err := NewSpanInserter(db)
	if err != nil {
		logrus.WithError(err).Error("GqlSpan couldn't open table t_Span")
		return nil
	}

	return &Olap{
		conn:         db,
		spanInserter: spanInserter,
	}
}

func CreateSpanTable(db sqlx.SqlConn) error {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS `t_Span` " +
		"(trace_id VARCHAR(32), " +
		"span_id VARCHAR(16), " +
		"parent_span_id VARCHAR(16), " +
		"path VARCHAR(255), " +
		"name VARCHAR(255), " +
		"start_time DATETIME(6), " +
		"end_time DATETIME(6)) " +
		"DISTRIBUTED BY HASH(trace_id) BUCKETS 32 " +
		"PROPERTIES (\"replication_num\" = \"1\");")
	return err
}

func NewSpanInserter(db sqlx.SqlConn) (*sqlx.BulkInserter, error) {
	return sqlx.NewBulkInserter(db, "INSERT INTO `t_Span` "+
		"(trace_id, "+
		"span_id, "+
		"parent_span_id, "+
		"path, "+
		"name, "+
		"start_time, "+
		"end_time) "+
		"VALUES (?,?,?,?,?,?,?)")
}

func (o *Olap) InsertSpan(record *SpanRecord) {
	if o == nil {
		return
	}
	err := o.spanInserter.Insert(
		record.TraceID,
		record.SpanID,
		record.ParentSpanID,
		record.Path,
		record.Name,
		record.StartTime.Format(config.LayoutDate6),
		record.EndTime.Format(config.LayoutDate6))
	if err != nil {
		logrus.WithError(err).WithField("span", *record).Warn("GqlSpan couldn't insert span")
	}
}

func (o *Olap) SelectSpans(buf *[]*SpanRecord) {
	if o == nil {
		return
	}
	err := o.conn.QueryRows(buf, "SELECT trace_id, span_id, parent_span_id, path, name, start_time, end_time FROM `t_Span` ORDER BY start_time")
	if err != nil {
		logrus.WithError(err).Error("GqlSpan couldn't select spans")
	}
}

func (o *Olap) countSpans(field string, value string) int {
	if o == nil {
		return 0
	}
	var count int
	err := o.conn.QueryRow(&count, "SELECT COUNT(*) FROM `t_Span` WHERE "+field+" = ?", value)
	if err != nil {
		logrus.WithError(err).Error("GqlSpan couldn't count spans")
		return 0
	}
	return count
}

// CountTraceSpans reports how many spans of one trace were archived.
func (o *Olap) CountTraceSpans(traceID string) int {
	return o.countSpans("trace_id", traceID)
}

func (o *Olap) Flush() {
	if o == nil {
		return
	}
	o.spanInserter.Flush()
}

func (o *Olap) AddExRequest(rt *RequestTrace) {
	if o == nil {
		return
	}
	o.muExRequest.Lock()
	defer o.muExRequest.Unlock()
	o.listExRequest = append(o.listExRequest, rt)
}

func (o *Olap) SummaryExRequests() {
	if o == nil {
		return
	}
	o.muExRequest.Lock()
	defer o.muExRequest.Unlock()

	if len(o.listExRequest) == 0 {
		logrus.Info("GqlSpan not found leaked requests")
		return
	}
	for _, rt := range o.listExRequest {
		logrus.Infof("leaked request #%d started at %s", rt.number, rt.started.Format(config.LayoutDate6))
	}
}
