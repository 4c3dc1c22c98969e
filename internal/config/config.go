package config

import (
	"os"
	"strconv"
	"strings"

	"scratch_lottery/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort          string
	DatabaseURL      string
	BotToken         string
	BotEnabled       bool
	JWTSecret        string
	AdminTelegramIDs []int64 // tg id админов бота, через запятую в env

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Game economy
	CardPrice    int64
	InitialCoins int64

	// Card rendering
	AssetsDir string

	// Rate limits
	APIRateLimit   int
	APIRateWindow  int // seconds
	GameRateLimit  int
	GameRateWindow int // seconds

	LogLevel string
	LogJSON  bool
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botEnabled := os.Getenv("BOT_ENABLED") != "false"
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" && botEnabled {
		logger.Fatal("BOT_TOKEN is not set (set BOT_ENABLED=false to run API only)")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Проверка тг id админов !! ЧЕРЕЗ ЗАПЯТУЮ В ENV !!
	var adminIDs []int64
	if s := os.Getenv("ADMIN_TELEGRAM_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	cardPrice := int64(50) // цена карточки
	if v := os.Getenv("CARD_PRICE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cardPrice = n
		}
	}

	initialCoins := int64(100) // стартовый баланс
	if v := os.Getenv("INITIAL_COINS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			initialCoins = n
		}
	}

	assetsDir := os.Getenv("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "assets"
	}

	return &Config{
		AppPort:          port,
		DatabaseURL:      dbURL,
		BotToken:         botToken,
		BotEnabled:       botEnabled,
		JWTSecret:        jwtSecret,
		AdminTelegramIDs: adminIDs,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          redisDB,
		CardPrice:        cardPrice,
		InitialCoins:     initialCoins,
		AssetsDir:        assetsDir,
		APIRateLimit:     envInt("API_RATE_LIMIT", 10),
		APIRateWindow:    envInt("API_RATE_WINDOW_SECONDS", 60),
		GameRateLimit:    envInt("GAME_RATE_LIMIT", 60),
		GameRateWindow:   envInt("GAME_RATE_WINDOW_SECONDS", 60),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogJSON:          os.Getenv("LOG_JSON") == "true",
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
