package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := accounts.LoadConfig()
	if err != nil {
		lgr.GetLogger("config").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := openDatabase(context.Background(), cfg.DSN)
	if err != nil {
		lgr.GetLogger("persistence").Error("database bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := accounts.NewUsersRepository(db)
	tokens := accounts.NewTokenService(
		[]byte(cfg.SigningKey),
		cfg.TokenExpiration,
		lgr.GetLogger("tokens"),
	)

	app := fiber.New(fiber.Config{
		AppName:      "go-accounts",
		ErrorHandler: accounts.NewErrorHandler(cfg.IsProduction(), lgr.GetLogger("http")),
	})

	controller := accounts.NewUserController(func(c *accounts.UserController) *accounts.UserController {
		c.Users = users
		c.Tokens = tokens
		return c.WithLogger(lgr.GetLogger("users"))
	})

	accounts.RegisterRoutes(app, controller)
	app.Use(accounts.NotFoundHandler)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lgr.GetLogger("http").Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	lgr.GetLogger("http").Info("listening", "port", cfg.Port, "env", cfg.Environment)

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		lgr.GetLogger("http").Error("shutdown error", "error", err)
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*accounts.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
