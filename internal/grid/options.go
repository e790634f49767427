package grid

import "runtime"

const (
	DefaultRowHeight = 25.0

	// Below this many rows sorting stays on the calling goroutine.
	defaultParallelThreshold = 50_000
)

type options struct {
	autoReload        int
	autoScroll        AutoScroll
	selectFullRow     bool
	horizontalScroll  bool
	serialColumn      bool
	rowHeight         float64
	captureSelectAll  bool
	parallelThreshold int
	workers           int
	config            any
}

func defaultOptions() options {
	return options{
		autoScroll:        NewAutoScroll(false),
		rowHeight:         DefaultRowHeight,
		captureSelectAll:  true,
		parallelThreshold: defaultParallelThreshold,
		workers:           runtime.GOMAXPROCS(0),
	}
}

// Option configures a Table at construction.
type Option func(*options)

// WithAutoReload rebuilds the display after every n row insert/update
// operations. n <= 0 leaves auto reload disabled.
func WithAutoReload(n int) Option {
	return func(o *options) { o.autoReload = n }
}

// WithAutoScroll enables scrolling while a drag nears the viewport edges.
func WithAutoScroll(a AutoScroll) Option {
	return func(o *options) { o.autoScroll = a }
}

// WithSelectFullRow makes every selection cover all columns of the touched rows.
func WithSelectFullRow() Option {
	return func(o *options) { o.selectFullRow = true }
}

// WithHorizontalScroll tells the renderer to allow horizontal scrolling.
func WithHorizontalScroll() Option {
	return func(o *options) { o.horizontalScroll = true }
}

// WithSerialColumn tells the renderer to draw a row number column.
func WithSerialColumn() Option {
	return func(o *options) { o.serialColumn = true }
}

// WithRowHeight sets the row render height hint.
func WithRowHeight(h float64) Option {
	return func(o *options) {
		if h > 0 {
			o.rowHeight = h
		}
	}
}

// WithoutSelectAllCapture leaves the select-all shortcut to the host.
func WithoutSelectAllCapture() Option {
	return func(o *options) { o.captureSelectAll = false }
}

// WithParallelSort sorts on up to workers goroutines once the table holds at
// least threshold rows.
func WithParallelSort(threshold, workers int) Option {
	return func(o *options) {
		o.parallelThreshold = threshold
		o.workers = workers
	}
}

// WithConfig attaches an arbitrary host value to the table.
func WithConfig(conf any) Option {
	return func(o *options) { o.config = conf }
}
