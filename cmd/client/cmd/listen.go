package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wesync/internal/domain/notice"
)

var listenSync bool

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Слушать уведомления о новых сообщениях",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.Listen(ctx, func(n *notice.Notice) {
			if asJSON() {
				_ = printJSON(n)
			} else {
				for _, u := range n.Unread {
					header.Printf("%s", u.FolderID)
					fmt.Printf(": %d непрочитанных\n", u.Num)
				}
				for _, m := range n.Messages {
					fmt.Printf("  %s: %s\n", m.From, m.Content)
				}
			}
			if !listenSync {
				return
			}
			for _, u := range n.Unread {
				if _, err := app.SyncFolder(ctx, u.FolderID); err != nil {
					log.Warn("failed to sync after notice", "folder", u.FolderID, "error", err)
				}
			}
		})
	},
}

func init() {
	listenCmd.Flags().BoolVar(&listenSync, "sync", false, "синхронизировать папку после уведомления")
}
