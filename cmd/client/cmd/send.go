package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sendGroup bool

var sendCmd = &cobra.Command{
	Use:   "send <user|group-folder> <text...>",
	Short: "Отправить текстовое сообщение",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")

		var (
			id  string
			err error
		)
		if sendGroup {
			id, err = app.SendToGroup(cmd.Context(), args[0], text)
		} else {
			id, err = app.Send(cmd.Context(), args[0], text)
		}
		if err != nil {
			return err
		}
		if asJSON() {
			return printJSON(map[string]string{"id": id})
		}
		fmt.Println(id)
		return nil
	},
}

func init() {
	sendCmd.Flags().BoolVarP(&sendGroup, "group", "g", false, "первый аргумент - групповая папка")
}
