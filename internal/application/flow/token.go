package flow

import "strings"

// Tokens de callback sin argumento.
const (
	tokMainMenu   = "main_menu"
	tokSubmit     = "submit"
	tokManual     = "manual"
	tokManualItem = "manual_item"
	tokBack       = "back"
	tokSkipNote   = "skip_note"
	tokAddNote    = "add_note"
	tokResetLogin = "reset_login"
)

// Prefijos de tokens con argumento ("kind:valor"). El valor de los ítems de
// catálogo es su identificador estable, no el nombre: los renombres no rompen
// la resolución del callback.
const (
	kindProject    = "proj"
	kindCategory   = "cat"
	kindMaterial   = "mat"
	kindPlate      = "plate"
	kindPlateType  = "ptype"
	kindInstrument = "inst"
	kindDirection  = "dir"
	kindDepartment = "dep"
	kindStatus     = "status"
	kindOperation  = "op"
	kindFermaKind  = "fkind"
	kindAction     = "act"
)

// tok compone un token "kind:valor".
func tok(kind, val string) string { return kind + ":" + val }

// splitTok separa un token en clase y valor. Tokens sin ":" devuelven la
// clase vacía y el token entero como valor.
func splitTok(s string) (kind, val string) {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}
