package flow

import "sync"

// Identity es la identidad autenticada de la conversación.
type Identity struct {
	Login      string
	Name       string // Ф.И.О resuelto de la hoja de empleados
	Role       string
	Department string
}

// FlowData es la carga tipada del flujo activo (unión etiquetada: cada flujo
// define su propio struct de estado, no hay bolsa genérica clave-valor).
type FlowData interface {
	Flow() ID
}

// Session es el estado en memoria de una conversación. No se persiste: un
// reinicio del proceso pierde los flujos en curso, que son cortos y
// reanudables desde el menú.
type Session struct {
	ChatID   int64
	Username string // username de Telegram, para reportes de problema
	Identity *Identity

	data FlowData
}

// StartFlow activa un flujo con su estado inicial.
func (s *Session) StartFlow(data FlowData) { s.data = data }

// Data devuelve la carga del flujo activo (nil si no hay flujo).
func (s *Session) Data() FlowData { return s.data }

// ActiveFlow devuelve el ID del flujo activo, o cadena vacía.
func (s *Session) ActiveFlow() ID {
	if s.data == nil {
		return ""
	}
	return s.data.Flow()
}

// EndFlow descarta el estado del flujo activo. Siempre permitido, en
// cualquier estado.
func (s *Session) EndFlow() { s.data = nil }

// Reset borra todo: flujo activo e identidad. Es la salida de /start y del
// logout explícito; nunca se rechaza.
func (s *Session) Reset() {
	s.data = nil
	s.Identity = nil
}

// Store guarda las sesiones por chat. Cada sesión la toca solo su propio
// usuario, pero los updates llegan en goroutines separadas: Do serializa el
// acceso por chat sin bloquear a los demás.
type Store struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	mu sync.Mutex
	s  *Session
}

// NewStore construye el almacén de sesiones.
func NewStore() *Store {
	return &Store{slots: make(map[int64]*slot)}
}

// Do ejecuta fn con la sesión del chat, en exclusión mutua por chat.
func (st *Store) Do(chatID int64, fn func(s *Session)) {
	st.mu.Lock()
	sl, ok := st.slots[chatID]
	if !ok {
		sl = &slot{s: &Session{ChatID: chatID}}
		st.slots[chatID] = sl
	}
	st.mu.Unlock()

	sl.mu.Lock()
	defer sl.mu.Unlock()
	fn(sl.s)
}
