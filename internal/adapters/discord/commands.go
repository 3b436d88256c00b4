package discord

import "github.com/bwmarrin/discordgo"

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "team",
		Description: "Gestiona los equipos del server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Crea un equipo",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Nombre del equipo", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "members", Description: "Menciones del roster", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "captains", Description: "Menciones de capitanes"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "subs", Description: "Menciones de suplentes"},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Lista los equipos"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "roster",
				Description: "Reemplaza el roster completo",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "team", Description: "Id del equipo", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "members", Description: "Menciones del roster", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "captains", Description: "Menciones de capitanes"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "subs", Description: "Menciones de suplentes"},
				},
			},
		},
	},
	{
		Name:        "scrim",
		Description: "Propone y confirma scrims entre equipos",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Propone un scrim (tu equipo es el local)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "home", Description: "Id del equipo local", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "away", Description: "Id del equipo rival", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "per_team", Description: "Jugadores por lado", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "when", Description: "YYYY-MM-DD HH:MM", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "timezone", Description: "IANA, ej America/Argentina/Buenos_Aires"},
				},
			},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Scrims del server"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "vote",
				Description: "Vota a favor del scrim propuesto",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "scrim", Description: "Id del scrim", Required: true},
					{
						Type: discordgo.ApplicationCommandOptionString, Name: "side",
						Description: "Por que lado votas (default: visitante)",
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "local", Value: "home"},
							{Name: "visitante", Value: "away"},
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "confirm_anyways",
				Description: "Fuerza la confirmacion aunque falte quorum",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "scrim", Description: "Id del scrim", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "decline",
				Description: "Rechaza el scrim propuesto",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "scrim", Description: "Id del scrim", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Estado de un scrim",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "scrim", Description: "Id del scrim", Required: true},
				},
			},
		},
	},
	{
		Name:        "gameday",
		Description: "Gamedays recurrentes del equipo",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "setup",
				Description: "Crea el horario recurrente del equipo",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "team", Description: "Id del equipo", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "per_team", Description: "Jugadores requeridos", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "weekday", Description: "Dia de la semana", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "hour", Description: "Hora local (0-23)", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "minute", Description: "Minuto (0-59)"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "timezone", Description: "IANA, ej America/Argentina/Buenos_Aires", Required: true},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "auto_subs", Description: "Buscar suplentes automaticamente"},
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "sub_channel", Description: "Canal donde pedir suplentes"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "config",
				Description: "Ajusta el horario recurrente (solo lo que pases)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "bucket", Description: "Id del horario", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "per_team", Description: "Jugadores requeridos"},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "auto_subs", Description: "Buscar suplentes automaticamente"},
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "sub_channel", Description: "Canal donde pedir suplentes"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "attend",
				Description: "Marca tu asistencia al gameday",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "gameday", Description: "Id del gameday", Required: true},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "attending", Description: "Vas?", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Motivo si no vas"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sub",
				Description: "Anotate como suplente del gameday",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "gameday", Description: "Id del gameday", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "score",
				Description: "Reporta un resultado",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "gameday", Description: "Id del gameday", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "Resultado, ej 13-7", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "image",
				Description: "Adjunta una captura del resultado",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "gameday", Description: "Id del gameday", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "url", Description: "URL de la imagen", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "complete",
				Description: "Cierra el gameday y agenda el proximo",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "gameday", Description: "Id del gameday", Required: true},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "won", Description: "Ganaron?"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "cancel",
				Description: "Cancela un gameday puntual",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "gameday", Description: "Id del gameday", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Estado y asistencia de un gameday",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "gameday", Description: "Id del gameday", Required: true},
				},
			},
		},
	},
	{
		Name:        "practice",
		Description: "Sesiones de practica por intervalos",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "start",
				Description: "Abre una sesion (vos ya contas como presente)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "team", Description: "Id del equipo", Required: true},
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Canal de voz de la practica"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "join",
				Description: "Entra a la sesion",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "practice", Description: "Id de la sesion", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leave",
				Description: "Sale de la sesion",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "practice", Description: "Id de la sesion", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "absent",
				Description: "Avisa que no venis",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "practice", Description: "Id de la sesion", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Motivo"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Estado y presentes de la sesion",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "practice", Description: "Id de la sesion", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "time",
				Description: "Tiempo acumulado de un miembro",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "practice", Description: "Id de la sesion", Required: true},
					{Type: discordgo.ApplicationCommandOptionUser, Name: "member", Description: "Miembro (default: vos)"},
				},
			},
		},
	},
	{
		Name:        "settings",
		Description: "Umbrales del bot en este server (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "show", Description: "Ver configuracion"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Actualizar configuracion (solo lo que pases)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "force_confirm_min", Description: "Minimo de votos confirm-anyways"},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "reminder_lead_minutes", Description: "Minutos antes del scrim para el reminder"},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "cleanup_delay_minutes", Description: "Minutos despues del scrim para limpiar"},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "sub_finding_max_hours", Description: "Horas maximas de busqueda de subs"},
				},
			},
		},
	},
	{
		Name:        "ping",
		Description: "Latido del bot",
	},
}
