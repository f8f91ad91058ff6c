package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"gopos/config"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("error").Fatal("goose: configuração inválida.", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if envErr != nil {
		log.Debug("goose: .env não encontrado; usando o ambiente do sistema.", nil)
	}

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./sql", "diretório com as migrações")
	flag.Parse()

	db, err := database.NewPostgresDB(cfg.DatabaseURL, database.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		log.Fatal("goose: falha ao conectar ao DB.", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("goose: falha ao fechar o DB.", err)
		}
	}()

	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose: dialeto não suportado.", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatal("goose: comando falhou.", err)
	}

	log.Info("goose: comando concluído.", map[string]interface{}{"command": command, "dir": migrationsDir})
}
