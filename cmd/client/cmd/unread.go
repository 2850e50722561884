package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"wesync/internal/domain/notice"
)

var unreadCmd = &cobra.Command{
	Use:   "unread [folder...]",
	Short: "Число непрочитанных сообщений",
	RunE: func(cmd *cobra.Command, args []string) error {
		unread, err := app.Unread(cmd.Context(), args)
		if err != nil {
			return err
		}
		if unread == nil {
			unread = []notice.Unread{}
		}
		rows := make([][]string, 0, len(unread))
		for _, u := range unread {
			rows = append(rows, []string{u.FolderID, strconv.Itoa(u.Num)})
		}
		return printTable(unread, []string{"FOLDER", "UNREAD"}, rows)
	},
}
