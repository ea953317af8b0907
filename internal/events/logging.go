package events

import (
	"encoding/json"

	"js-runner/internal/logger"
)

type eventLogger struct {
	entry *logger.LogEntry
}

func newEventLogger(entry *logger.LogEntry) eventLogger {
	if entry == nil {
		entry = logger.Named("eq")
	}
	return eventLogger{entry: entry}
}

// SetLogger 替换 EQ 的日志入口，传入 nil 时恢复默认。
func (q *EventQueue) SetLogger(entry *logger.LogEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.log = newEventLogger(entry)
}

func (l eventLogger) published(ev Event) {
	if l.entry == nil || !l.entry.Logger.IsLevelEnabled(logger.DebugLevel) {
		return
	}
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		payload = []byte(`"<unencodable>"`)
	}
	l.entry.WithFields(logger.Fields{
		"type":    string(ev.Type),
		"run_id":  ev.RunID,
		"payload": string(payload),
	}).Debug("published event into EQ")
}
