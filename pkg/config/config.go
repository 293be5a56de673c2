package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	Bot    BotConfig
	Sheets SheetsConfig
	Cache  CacheConfig
	HTTP   HTTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// BotConfig credenciales del bot de Telegram.
type BotConfig struct {
	Token string
}

// SheetsConfig acceso a la hoja de cálculo que actúa de almacén de datos.
type SheetsConfig struct {
	SpreadsheetID      string
	ServiceAccountFile string // ruta al JSON de la cuenta de servicio
}

// CacheConfig política del caché de catálogo.
type CacheConfig struct {
	File             string // espejo JSON en disco; vacío = sin espejo
	TTLMinutes       int    // ventana de frescura para Refresh sin force
	DailyRefreshHour int    // hora local del refresh diario incondicional
}

// HTTPConfig servidor HTTP de operación (health, refresh forzado).
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, BOT_TOKEN, SPREADSHEET_ID, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "svbot"),
		},
		Bot: BotConfig{
			Token: getString(v, "BOT_TOKEN", ""),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:      getString(v, "SPREADSHEET_ID", ""),
			ServiceAccountFile: getString(v, "SERVICE_ACCOUNT_FILE", "service_account.json"),
		},
		Cache: CacheConfig{
			File:             getString(v, "CACHE_FILE", "cache.json"),
			TTLMinutes:       getInt(v, "CACHE_TTL_MINUTES", 60),
			DailyRefreshHour: getInt(v, "CACHE_DAILY_REFRESH_HOUR", 8),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
	}

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN es obligatorio")
	}
	if cfg.Sheets.SpreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID es obligatorio")
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
