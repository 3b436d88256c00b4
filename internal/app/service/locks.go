package service

import "sync"

// keyedLocks serializa las transiciones por entidad: el check de quorum y
// la escritura de estado que lo sigue corren bajo el mismo lock, asi dos
// votos simultaneos no pueden leer quorum viejo los dos.
//
// El mapa no se poda: queda una entrada por id tocado desde el arranque.
// Para un bot de guild son unas decenas de entidades por semana.
type keyedLocks struct {
	mu sync.Mutex
	m  map[int64]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{m: make(map[int64]*sync.Mutex)}
}

// lock toma el mutex de la entidad y devuelve su unlock.
func (k *keyedLocks) lock(id int64) func() {
	k.mu.Lock()
	l, ok := k.m[id]
	if !ok {
		l = &sync.Mutex{}
		k.m[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
