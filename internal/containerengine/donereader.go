package containerengine

import (
	"io"
	"sync"
)

// doneReader wraps an io.Reader and signals once, on its first EOF.
// containerd's shim holds both ends of the stdin FIFO open and never
// propagates EOF on its own; callers use the done channel to close the
// exec process's stdin explicitly once the source is exhausted.
type doneReader struct {
	r    io.Reader
	once sync.Once
	done chan struct{}
}

func newDoneReader(r io.Reader) *doneReader {
	return &doneReader{r: r, done: make(chan struct{})}
}

func (d *doneReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err == io.EOF {
		d.once.Do(func() { close(d.done) })
	}
	return n, err
}
