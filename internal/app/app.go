// Package app 依設定組裝儲存層、鎖與服務
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/sqldb"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-statement-ledger/internal/config"
	"github.com/JoeShih716/go-statement-ledger/pkg/keylock"
	"github.com/JoeShih716/go-statement-ledger/pkg/mysql"
	"github.com/JoeShih716/go-statement-ledger/pkg/sqlite"
	"github.com/JoeShih716/go-statement-ledger/pkg/wal"
)

type App struct {
	Ledger   *usecase.LedgerService
	Accounts *usecase.AccountService
}

// NewApp 建立儲存層、帳戶鎖與 usecase，回傳的 cleanup 會以相反順序關閉資源
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	var closers []io.Closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Error("close resource failed", "error", err)
			}
		}
	}

	accounts, store, err := openStorage(cfg.Storage, logger, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	locker, err := openLocker(ctx, cfg.Lock, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &App{
		Ledger:   usecase.NewLedgerService(accounts, store, locker, logger),
		Accounts: usecase.NewAccountService(accounts, logger),
	}, cleanup, nil
}

func openStorage(cfg config.StorageConfig, logger *slog.Logger, closers *[]io.Closer) (usecase.AccountDirectory, usecase.TransactionStore, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		var accountsWAL, ledgerWAL *wal.WAL
		if cfg.Memory.Dir != "" {
			var err error
			if accountsWAL, err = wal.NewWAL(filepath.Join(cfg.Memory.Dir, "accounts.wal")); err != nil {
				return nil, nil, fmt.Errorf("failed to init accounts WAL: %w", err)
			}
			*closers = append(*closers, accountsWAL)
			if ledgerWAL, err = wal.NewWAL(filepath.Join(cfg.Memory.Dir, "ledger.wal")); err != nil {
				return nil, nil, fmt.Errorf("failed to init ledger WAL: %w", err)
			}
			*closers = append(*closers, ledgerWAL)
		}
		dir, err := memory.NewDirectory(accountsWAL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to recover accounts: %w", err)
		}
		store, err := memory.NewTransactionStore(ledgerWAL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to recover ledger: %w", err)
		}
		logger.Info("storage ready", "driver", cfg.Driver, "dir", cfg.Memory.Dir)
		return dir, store, nil

	case config.StorageSQLite:
		client, err := sqlite.NewClient(cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, client)
		return openSQL(client, cfg.Driver, logger)

	case config.StorageMySQL:
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			return nil, nil, err
		}
		*closers = append(*closers, client)
		return openSQL(client, cfg.Driver, logger)
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func openSQL(client sqldb.DBProvider, driver string, logger *slog.Logger) (usecase.AccountDirectory, usecase.TransactionStore, error) {
	if err := sqldb.Migrate(client.DB()); err != nil {
		return nil, nil, err
	}
	logger.Info("storage ready", "driver", driver)
	return sqldb.NewDirectory(client), sqldb.NewStore(client), nil
}

func openLocker(ctx context.Context, cfg config.LockConfig, closers *[]io.Closer) (usecase.Locker, error) {
	switch cfg.Driver {
	case config.LockLocal:
		return keylock.NewLocal(), nil
	case config.LockRedis:
		locker, err := keylock.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, locker)
		return locker, nil
	}
	return nil, errors.New("unknown lock driver " + cfg.Driver)
}
