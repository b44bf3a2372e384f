package query

import "sync"

// linePool recycles the []byte buffers Format builds result lines into.
// Format runs once per matched record on every keystroke, so the
// allocate-format-discard pattern a naive implementation would use
// turns into one GC-visible allocation per displayed line per
// keystroke; pooling the backing array avoids that.
var linePool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 128)
		return &b
	},
}

func getLineBuf() []byte {
	return (*linePool.Get().(*[]byte))[:0]
}

func putLineBuf(b []byte) {
	if cap(b) > 4096 {
		return
	}
	linePool.Put(&b)
}
