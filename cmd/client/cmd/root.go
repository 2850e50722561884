package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"wesync/internal/app/client"
	"wesync/internal/app/client/config"
	"wesync/internal/utils/logger"
)

var (
	cfgFile    string
	username   string
	serverURL  string
	jsonOutput bool
	debug      bool

	app *client.App
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wesync",
	Short: "WeSync - клиент синхронизации почтового ящика",
	Long: `WeSync синхронизирует папки диалогов и групп с сервером,
отправляет сообщения и файлы и слушает уведомления о новых сообщениях.

Ключи синхронизации и полученные сообщения хранятся локально в SQLite.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if username != "" {
		cfg.Username = username
	}
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if cfg.Username == "" {
		return fmt.Errorf("не задан пользователь: --user или WESYNC_USERNAME")
	}

	env := cfg.Env
	if debug {
		env = "dev"
	}
	log = logger.New(env)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации клиента: %w", err)
	}
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "имя пользователя")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера host:port")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")

	rootCmd.AddCommand(foldersCmd, syncCmd, sendCmd, unreadCmd, uploadCmd, downloadCmd, listenCmd)
}
