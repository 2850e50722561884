package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
)

var (
	createWith  []string
	deleteOnly  bool
	showHistory int
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Список папок пользователя",
	RunE: func(cmd *cobra.Command, _ []string) error {
		folders, err := app.Folders(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(folders))
		for _, id := range folders {
			rows = append(rows, []string{id, folder.TypeOf(id).String()})
		}
		return printTable(folders, []string{"FOLDER", "TYPE"}, rows)
	},
}

var createCmd = &cobra.Command{
	Use:   "create --with user [--with user...]",
	Short: "Создать диалог или группу",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(createWith) == 0 {
			return fmt.Errorf("укажите собеседника через --with")
		}
		id, err := app.CreateConversation(cmd.Context(), createWith...)
		if err != nil {
			return err
		}
		if asJSON() {
			return printJSON(map[string]string{"folder_id": id})
		}
		fmt.Println(id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <folder>",
	Short: "Удалить папку или только ее содержимое",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.DeleteFolder(cmd.Context(), args[0], deleteOnly)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync <folder> [folder...]",
	Short: "Синхронизировать папки и показать новые сообщения",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var received []*message.Meta
		for _, id := range args {
			result, err := app.SyncFolder(cmd.Context(), id)
			if err != nil {
				return err
			}
			received = append(received, result.Received...)
		}
		return printMessages(received)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <folder>",
	Short: "Сообщения папки из локального кэша",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := app.Messages(cmd.Context(), args[0], showHistory)
		if err != nil {
			return err
		}
		return printMessages(msgs)
	},
}

func printMessages(msgs []*message.Meta) error {
	rows := make([][]string, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, []string{
			time.Unix(m.Time, 0).Format(time.DateTime),
			m.From,
			m.Type.String(),
			string(m.Content),
		})
	}
	if msgs == nil {
		msgs = []*message.Meta{}
	}
	return printTable(msgs, []string{"TIME", "FROM", "TYPE", "CONTENT"}, rows)
}

func init() {
	createCmd.Flags().StringSliceVarP(&createWith, "with", "w", nil, "участники")
	deleteCmd.Flags().BoolVar(&deleteOnly, "content-only", false, "удалить только сообщения")
	historyCmd.Flags().IntVarP(&showHistory, "limit", "n", 50, "число сообщений")
	foldersCmd.AddCommand(createCmd, deleteCmd, historyCmd)
}
