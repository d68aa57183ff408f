package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"user-service/internal/core/cache"
	"user-service/internal/core/config"
	"user-service/internal/core/logger"
	"user-service/internal/repo"
	"user-service/internal/usecase"
	"user-service/pkg/utils"
)

// session 一次命令执行需要的依赖
type session struct {
	cfg   *config.Config
	log   *zap.Logger
	store *repo.Store

	list   *usecase.ListUsers
	create *usecase.CreateUser
	delete *usecase.DeleteUser
}

// opener 按配置打开存储；测试里替换成内存实现
type opener func(ctx context.Context, cfg *config.Config, l *zap.Logger) (*repo.Store, error)

type app struct {
	cfgPath string
	debug   bool
	out     io.Writer
	open    opener
	load    func(path string) (*config.Config, error)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(&app{out: os.Stdout, open: openStore, load: config.Load})
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "user-admin",
		Short:        "Administer the user store (schema and users)",
		SilenceUsage: true,
	}
	cmd.SetOut(a.out)

	cmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging to stderr")

	cmd.AddCommand(migrateCmd(a))
	cmd.AddCommand(usersCmd(a))
	return cmd
}

// start 加载配置、打开存储、组装用例；返回的 func 负责释放
func (a *app) start(ctx context.Context) (*session, func(), error) {
	cfg, err := a.load(a.cfgPath)
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if a.debug {
		level = "debug"
	}
	l, syncLog := logger.NewConsole(level)

	store, err := a.open(ctx, cfg, l)
	if err != nil {
		syncLog()
		return nil, nil, err
	}
	if cfg.Storage.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			syncLog()
			return nil, nil, err
		}
	}

	hasher := utils.NewBcryptHasher(cfg.Security.BcryptCost)
	s := &session{
		cfg:    cfg,
		log:    l,
		store:  store,
		list:   usecase.NewListUsers(store.Users, l),
		create: usecase.NewCreateUser(store.Users, hasher, l),
		delete: usecase.NewDeleteUser(store.Users, l),
	}
	return s, func() {
		_ = store.Close()
		syncLog()
	}, nil
}

// openStore 与 API 进程一致：存储 + 可选 redis 缓存（写操作要让 API 的列表缓存失效）
func openStore(ctx context.Context, cfg *config.Config, l *zap.Logger) (*repo.Store, error) {
	store, err := repo.Open(ctx, cfg.Storage, l)
	if err != nil {
		return nil, err
	}
	if cfg.Redis.Enabled {
		c := cache.NewFromClient(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
		store.WithCache(c, time.Duration(cfg.Redis.ListTTLSec)*time.Second, l)
	}
	return store, nil
}
