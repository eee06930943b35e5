package services

import "sync"

// docLocks serializa las mutaciones de un mismo documento. Las entradas se
// liberan cuando nadie más las espera.
type docLocks struct {
	mu   sync.Mutex
	byID map[string]*docLock
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

func newDocLocks() *docLocks {
	return &docLocks{byID: make(map[string]*docLock)}
}

// lock bloquea el documento id y devuelve la función que lo libera.
func (l *docLocks) lock(id string) func() {
	l.mu.Lock()
	dl, ok := l.byID[id]
	if !ok {
		dl = &docLock{}
		l.byID[id] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.mu.Lock()
	return func() {
		dl.mu.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.byID, id)
		}
		l.mu.Unlock()
	}
}

func (l *docLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}
