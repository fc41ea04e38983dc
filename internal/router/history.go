package router

import "sync"

// History is the navigation stack: a list of visited paths and a cursor.
// Pushing discards any forward entries.
type History struct {
	mu      sync.Mutex
	entries []string
	cursor  int
}

func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

func (h *History) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.cursor+1], path)
	h.cursor++
}

// Replace overwrites the current entry.
func (h *History) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.cursor] = path
}

// Back moves the cursor one entry back and reports whether it moved.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	return true
}

func (h *History) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == len(h.entries)-1 {
		return false
	}
	h.cursor++
	return true
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
