package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var downloadOut string

var uploadCmd = &cobra.Command{
	Use:   "upload <receiver> <path>",
	Short: "Загрузить файл для пользователя или группы",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("ошибка открытия файла: %w", err)
		}
		defer f.Close()

		result, err := app.Upload(cmd.Context(), args[0], f)
		if err != nil {
			return err
		}
		if asJSON() {
			return printJSON(result)
		}
		fmt.Printf("%s (%d фрагментов, собран: %v)\n", result.FileID, result.Slices, result.Complete)
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Скачать файл",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := os.Stdout
		if downloadOut != "" && downloadOut != "-" {
			f, err := os.Create(downloadOut)
			if err != nil {
				return fmt.Errorf("ошибка создания файла: %w", err)
			}
			defer f.Close()
			out = f
		}

		n, err := app.Download(cmd.Context(), args[0], out)
		if err != nil {
			return err
		}
		log.Debug("file downloaded", "file_id", args[0], "bytes", n)
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOut, "output", "o", "", "куда сохранить, по умолчанию stdout")
}
