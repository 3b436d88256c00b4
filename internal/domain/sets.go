package domain

// Los voter lists y rosters se guardan como arrays de ids; estas helpers
// los tratan como sets para que votar dos veces sea no-op.

// AddID agrega id si no estaba. Devuelve el slice y si hubo cambio.
func AddID(ids []string, id string) ([]string, bool) {
	if HasID(ids, id) {
		return ids, false
	}
	return append(ids, id), true
}

func HasID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID saca id si estaba. Devuelve el slice y si hubo cambio.
func RemoveID(ids []string, id string) ([]string, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
