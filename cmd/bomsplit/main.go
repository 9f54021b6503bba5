package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"bomsplit/config"
	"bomsplit/database"
	"bomsplit/logger"
)

var version = "dev"

// application общее состояние команд: конфигурация и логгер
type application struct {
	cfg *config.Config
	log *zap.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &application{cfg: cfg, log: zap.NewNop()}
	if err := a.cli().RunContext(ctx, os.Args); err != nil {
		a.log.Error("Ошибка выполнения", logger.ErrorF(err))
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func (a *application) cli() *cli.App {
	return &cli.App{
		Name:    "bomsplit",
		Usage:   "Разбор перечней элементов (BOM) по категориям компонентов",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   a.cfg.Logger.Level,
				Usage:   "Уровень логов (debug, info, warn, error)",
				EnvVars: []string{"LOGGER_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Value:   a.cfg.Logger.AsJSON,
				Usage:   "Логи в формате JSON",
				EnvVars: []string{"LOGGER_AS_JSON"},
			},
			&cli.StringFlag{
				Name:    "db",
				Value:   a.cfg.Database.Path,
				Usage:   "Путь к базе известных компонентов",
				EnvVars: []string{"BOMSPLIT_DB_PATH"},
			},
		},
		Before: func(c *cli.Context) error {
			log, err := logger.New(c.String("log-level"), c.Bool("log-json"))
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
		After: func(c *cli.Context) error {
			_ = a.log.Sync()
			return nil
		},
		Commands: []*cli.Command{
			a.splitCommand(),
			a.compareCommand(),
			a.dbCommand(),
		},
	}
}

// openDB открывает базу компонентов по флагу --db
func (a *application) openDB(c *cli.Context) (*database.DB, error) {
	db, err := database.NewDB(c.String("db"), a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to open component database: %w", err)
	}
	return db, nil
}
