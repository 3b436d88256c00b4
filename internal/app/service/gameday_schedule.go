package service

import "time"

// Calculo puro de ocurrencias y ventanas de votacion. Todo en la zona
// horaria del bucket; los instantes que salen son absolutos.

// nextOccurrence: la proxima ocurrencia del weekday+hora estrictamente
// despues de now, en loc.
func nextOccurrence(now time.Time, wd time.Weekday, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	days := (int(wd) - int(local.Weekday()) + 7) % 7
	cand := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc).AddDate(0, 0, days)
	if !cand.After(now) {
		cand = cand.AddDate(0, 0, 7)
	}
	return cand
}

// votingWindow arma [start, end] para un gameday que arranca en startsAt.
// Default: abre 9 horas antes de la medianoche del dia del match (15:00
// del dia anterior) y dura 5 horas. Si el gameday esta a menos de 24hs,
// abre ya y cierra 1 hora antes del match (o 5 minutos si ni eso entra).
// Invariante garantizado: start <= end <= startsAt.
func votingWindow(now, startsAt time.Time, loc *time.Location) (start, end time.Time) {
	if startsAt.Sub(now) < 24*time.Hour {
		start = now
		end = startsAt.Add(-time.Hour)
		if !end.After(start) {
			end = startsAt.Add(-5 * time.Minute)
		}
		if !end.After(start) {
			end = startsAt
		}
		return start, end
	}

	local := startsAt.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	start = midnight.Add(-9 * time.Hour)
	end = start.Add(5 * time.Hour)

	if !start.After(now) {
		// el arranque default ya paso: abre ya, 5 horas de ventana
		start = now
		end = start.Add(5 * time.Hour)
		if end.After(startsAt) {
			end = startsAt
		}
	}
	return start, end
}
