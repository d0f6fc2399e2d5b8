package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/todoapi/internal/auth"
	"github.com/hitoshi/todoapi/internal/config"
	"github.com/hitoshi/todoapi/internal/database"
	"github.com/hitoshi/todoapi/internal/handler"
	"github.com/hitoshi/todoapi/internal/logger"
	"github.com/hitoshi/todoapi/internal/metrics"
	"github.com/hitoshi/todoapi/internal/password"
	"github.com/hitoshi/todoapi/internal/repository"
	"github.com/hitoshi/todoapi/internal/revocation"
	"github.com/hitoshi/todoapi/internal/security"
	"github.com/hitoshi/todoapi/internal/todo"
	"github.com/hitoshi/todoapi/internal/token"
	"github.com/hitoshi/todoapi/internal/user"
	"github.com/hitoshi/todoapi/internal/worker/cleanup"
)

// シャットダウン・タイムアウト設定
const (
	shutdownTimeout = 30 * time.Second
	seedTimeout     = time.Minute
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. .env由来のLOG_LEVELを反映する
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	root := NewRootCommand(w)
	root.SetArgs(args)
	root.SetOut(w)
	root.SetErr(w)
	return root.Execute()
}

// runWithConfig は設定を読み込んでからサブコマンドの処理を実行する。
func runWithConfig(w io.Writer, cmd Command, fn func(cfg *config.Config) error) error {
	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("env", cfg.AppEnv),
		slog.String("version", cfg.AppVersion),
	)

	return fn(cfg)
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// server はHTTPサーバーとバックグラウンドジョブをまとめたもの。
type server struct {
	http    *http.Server
	cleanup *cleanup.CleanupJob
	sweep   time.Duration
}

// newServer は全依存関係をワイヤリングし、起動前のサーバーを構築する。
func newServer(cfg *config.Config, db *sqlx.DB, startedAt time.Time) (*server, error) {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	todoRepo := repository.NewPostgresTodoRepo(db)

	// 2. トークンと失効レジストリ
	issuer, err := token.NewIssuer([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	registry := revocation.NewRegistry()

	// 3. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg, registry.Len)

	// 4. ドメインサービスの初期化
	authService := auth.NewService(userRepo, password.NewBcryptHasher(cfg.BcryptCost), issuer, registry)
	userService := user.NewService(userRepo, authService)
	todoService := todo.NewService(todoRepo, security.NewMarkupDetector())

	// 5. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		AppVersion:        cfg.AppVersion,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Verifier:          issuer,
		Revocations:       registry,
		Metrics:           collector,
		MetricsGatherer:   reg,
		AuthService:       authService,
		UserService:       userService,
		TodoService:       todoService,
		StartedAt:         startedAt,
	})

	return &server{
		http: &http.Server{
			Addr:         ":" + cfg.ServerPort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		cleanup: cleanup.NewCleanupJob(registry, collector, slog.Default()),
		sweep:   cfg.RevocationSweepInterval,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーと失効レジストリの掃除ジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := newServer(cfg, db, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 失効レジストリの掃除をバックグラウンドで実行
	go srv.cleanup.Start(ctx, srv.sweep)

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", srv.http.Addr),
		)
		if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runReset は全マイグレーションを巻き戻してから再適用する。全データが失われる。
func runReset(cfg *config.Config) error {
	if cfg.IsProduction() {
		return errors.New("reset is disabled when APP_ENV=production")
	}

	slog.Warn("resetting database",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.ResetDatabase(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	slog.Info("database reset completed successfully")
	return nil
}

// runSeed は既存データを削除し、サンプルユーザーとタスクを投入する。
func runSeed(cfg *config.Config) error {
	if cfg.IsProduction() {
		return errors.New("seed is disabled when APP_ENV=production")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	result, err := database.Seed(ctx, db, password.NewBcryptHasher(cfg.BcryptCost))
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("database seeded successfully",
		slog.Any("emails", result.Emails),
		slog.Int("todos", result.Todos),
		slog.String("password", database.SeedPassword),
	)
	return nil
}

// healthcheckPort はヘルスチェック先のポートを環境変数から決定する。
// SERVER_PORT、PORTの順に参照し、どちらもなければ3000を使う。
func healthcheckPort() string {
	for _, key := range []string{"SERVER_PORT", "PORT"} {
		if port := os.Getenv(key); port != "" {
			return port
		}
	}
	return "3000"
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
