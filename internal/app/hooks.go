package app

import (
	"sort"
	"sync"
)

// Standard hook priorities. Higher values run first for pre-command hooks
// and last for post-command hooks.
const (
	PrioritySystem = 1000
	PriorityUser   = 0
)

// Hook is the base interface for command hooks.
type Hook interface {
	// Name returns a unique identifier for this hook.
	Name() string

	// Priority returns the hook priority.
	Priority() int
}

// PreCommandHook runs before a command handler. Returning false cancels
// the command.
type PreCommandHook interface {
	Hook
	PreCommand(doc *Document, cmd Command) bool
}

// PostCommandHook runs after a command handler with its error.
type PostCommandHook interface {
	Hook
	PostCommand(doc *Document, cmd Command, err error)
}

// PreCommandFunc wraps a function as a PreCommandHook.
type PreCommandFunc struct {
	name     string
	priority int
	fn       func(doc *Document, cmd Command) bool
}

// NewPreCommandFunc creates a new PreCommandFunc hook.
func NewPreCommandFunc(name string, priority int, fn func(doc *Document, cmd Command) bool) *PreCommandFunc {
	return &PreCommandFunc{name: name, priority: priority, fn: fn}
}

// Name implements Hook.
func (f *PreCommandFunc) Name() string { return f.name }

// Priority implements Hook.
func (f *PreCommandFunc) Priority() int { return f.priority }

// PreCommand implements PreCommandHook.
func (f *PreCommandFunc) PreCommand(doc *Document, cmd Command) bool {
	if f.fn == nil {
		return true
	}
	return f.fn(doc, cmd)
}

// PostCommandFunc wraps a function as a PostCommandHook.
type PostCommandFunc struct {
	name     string
	priority int
	fn       func(doc *Document, cmd Command, err error)
}

// NewPostCommandFunc creates a new PostCommandFunc hook.
func NewPostCommandFunc(name string, priority int, fn func(doc *Document, cmd Command, err error)) *PostCommandFunc {
	return &PostCommandFunc{name: name, priority: priority, fn: fn}
}

// Name implements Hook.
func (f *PostCommandFunc) Name() string { return f.name }

// Priority implements Hook.
func (f *PostCommandFunc) Priority() int { return f.priority }

// PostCommand implements PostCommandHook.
func (f *PostCommandFunc) PostCommand(doc *Document, cmd Command, err error) {
	if f.fn != nil {
		f.fn(doc, cmd, err)
	}
}

// hookManager keeps hooks sorted by priority. Registering a name again
// replaces the earlier hook.
type hookManager struct {
	mu   sync.RWMutex
	pre  []PreCommandHook
	post []PostCommandHook
}

func (m *hookManager) registerPre(h PreCommandHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pre = replaceOrAppend(m.pre, h)
	sort.SliceStable(m.pre, func(i, j int) bool {
		return m.pre[i].Priority() > m.pre[j].Priority()
	})
}

func (m *hookManager) registerPost(h PostCommandHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.post = replaceOrAppend(m.post, h)
	sort.SliceStable(m.post, func(i, j int) bool {
		return m.post[i].Priority() < m.post[j].Priority()
	})
}

func (m *hookManager) unregister(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed bool
	m.pre, removed = removeNamed(m.pre, name)
	var removedPost bool
	m.post, removedPost = removeNamed(m.post, name)
	return removed || removedPost
}

func (m *hookManager) runPre(doc *Document, cmd Command) bool {
	m.mu.RLock()
	hooks := append([]PreCommandHook(nil), m.pre...)
	m.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreCommand(doc, cmd) {
			return false
		}
	}
	return true
}

func (m *hookManager) runPost(doc *Document, cmd Command, err error) {
	m.mu.RLock()
	hooks := append([]PostCommandHook(nil), m.post...)
	m.mu.RUnlock()

	for _, h := range hooks {
		h.PostCommand(doc, cmd, err)
	}
}

func (m *hookManager) names() (pre, post []string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.pre {
		pre = append(pre, h.Name())
	}
	for _, h := range m.post {
		post = append(post, h.Name())
	}
	return pre, post
}

func replaceOrAppend[H Hook](hooks []H, h H) []H {
	for i, existing := range hooks {
		if existing.Name() == h.Name() {
			hooks[i] = h
			return hooks
		}
	}
	return append(hooks, h)
}

func removeNamed[H Hook](hooks []H, name string) ([]H, bool) {
	for i, h := range hooks {
		if h.Name() == name {
			return append(hooks[:i], hooks[i+1:]...), true
		}
	}
	return hooks, false
}
