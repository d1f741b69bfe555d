package session

// outputBuffer is a bounded FIFO of textual lines, capped at outputCap
// entries; the oldest line drops on overflow.
type outputBuffer struct {
	lines []string
}

const outputCap = 100

func (b *outputBuffer) append(line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) > outputCap {
		b.lines = b.lines[len(b.lines)-outputCap:]
	}
}

// tail returns the last n lines, oldest-first within the slice (the caller
// treats the result as "newest-last").
func (b *outputBuffer) tail(n int) []string {
	if n <= 0 || n > len(b.lines) {
		n = len(b.lines)
	}
	return append([]string{}, b.lines[len(b.lines)-n:]...)
}

func (b *outputBuffer) len() int {
	return len(b.lines)
}
