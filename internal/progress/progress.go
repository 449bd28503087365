// Package progress defines the message contract emitted by indexing jobs.
//
// A job emits zero or more Update messages followed by exactly one Done
// message. Delivery is fire-and-forget: reporters must never block the
// indexing path, and a lost message never affects index state. Transports
// wrap a Reporter implementation; indexing code depends only on the
// interface.
package progress

import "log/slog"

// Update is one incremental progress message for an indexing job.
type Update struct {
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Done is the terminal message for an indexing job.
type Done struct {
	OK bool `json:"ok"`
}

// Reporter receives job progress. Implementations must be safe for use from
// a single indexing goroutine and must not block.
type Reporter interface {
	Progress(Update)
	Finish(Done)
}

type noopReporter struct{}

func (noopReporter) Progress(Update) {}
func (noopReporter) Finish(Done)     {}

// Noop returns a reporter that discards all messages.
func Noop() Reporter {
	return noopReporter{}
}

// LogReporter mirrors progress messages into structured logs.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter wraps a logger as a Reporter. A nil logger yields a noop.
func NewLogReporter(logger *slog.Logger) Reporter {
	if logger == nil {
		return Noop()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Progress(u Update) {
	r.logger.Info("indexing progress", slog.Int("total", u.Total), slog.String("message", u.Message))
}

func (r *LogReporter) Finish(d Done) {
	r.logger.Info("indexing finished", slog.Bool("ok", d.OK))
}

// ChannelReporter forwards messages to buffered channels for an external
// transport. Sends are non-blocking: when a consumer falls behind, updates
// are dropped rather than stalling the indexing job.
type ChannelReporter struct {
	updates chan Update
	done    chan Done
}

// NewChannelReporter creates a reporter with the given update buffer size.
func NewChannelReporter(buffer int) *ChannelReporter {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelReporter{
		updates: make(chan Update, buffer),
		done:    make(chan Done, 1),
	}
}

// Updates exposes the incremental message stream.
func (r *ChannelReporter) Updates() <-chan Update {
	return r.updates
}

// DoneCh exposes the terminal message; exactly one Done is sent per job.
func (r *ChannelReporter) DoneCh() <-chan Done {
	return r.done
}

func (r *ChannelReporter) Progress(u Update) {
	select {
	case r.updates <- u:
	default:
	}
}

func (r *ChannelReporter) Finish(d Done) {
	select {
	case r.done <- d:
	default:
	}
}

// Multi fans one stream out to several reporters.
func Multi(reporters ...Reporter) Reporter {
	filtered := make([]Reporter, 0, len(reporters))
	for _, rep := range reporters {
		if rep != nil {
			filtered = append(filtered, rep)
		}
	}
	return multiReporter{reporters: filtered}
}

type multiReporter struct {
	reporters []Reporter
}

func (m multiReporter) Progress(u Update) {
	for _, rep := range m.reporters {
		rep.Progress(u)
	}
}

func (m multiReporter) Finish(d Done) {
	for _, rep := range m.reporters {
		rep.Finish(d)
	}
}
