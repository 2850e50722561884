package client

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"

	"wesync/internal/domain/command"
	"wesync/internal/domain/file"
)

// slicesPerRequest сколько фрагментов уходит за один запрос sendFile
const slicesPerRequest = 16

// UploadResult итог загрузки файла
type UploadResult struct {
	FileID   string `json:"file_id"`
	Slices   int    `json:"slices"`
	Complete bool   `json:"complete"`
}

// Upload режет r на фрагменты и отправляет их получателю to. Фрагменты,
// которые сервер назвал недостающими, отправляются повторно один раз.
func (a *App) Upload(ctx context.Context, to string, r io.Reader) (*UploadResult, error) {
	parts, err := split(r, a.config.SliceSize)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, file.ErrEmptyUpload
	}

	fileID := file.ID(a.config.Username, to, uuid.NewString())
	result := &UploadResult{FileID: fileID, Slices: len(parts)}

	var missing []int
	for start := 0; start < len(parts); start += slicesPerRequest {
		end := min(start+slicesPerRequest, len(parts))
		resp, err := a.sendSlices(ctx, fileID, parts[start:end])
		if err != nil {
			return nil, err
		}
		result.Complete = resp.Complete
		missing = resp.Missing
	}

	if !result.Complete && len(missing) > 0 {
		var retry []file.Slice
		for _, idx := range missing {
			if idx >= 1 && idx <= len(parts) {
				retry = append(retry, parts[idx-1])
			}
		}
		resp, err := a.sendSlices(ctx, fileID, retry)
		if err != nil {
			return nil, err
		}
		result.Complete = resp.Complete
	}
	a.log.Debug("file uploaded", "file_id", fileID, "slices", len(parts), "complete", result.Complete)
	return result, nil
}

func (a *App) sendSlices(ctx context.Context, fileID string, batch []file.Slice) (*command.SendFileResponse, error) {
	var resp command.SendFileResponse
	req := &file.File{ID: fileID, Slices: batch}
	if err := a.http.Command(ctx, command.SendFile.String(), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", fileID, err)
	}
	return &resp, nil
}

// Download пишет собранный файл в w. Возвращает число записанных байт.
func (a *App) Download(ctx context.Context, fileID string, w io.Writer) (int64, error) {
	var resp command.GetFileResponse
	if err := a.http.Command(ctx, command.GetFile.String(), command.GetFileRequest{ID: fileID}, &resp); err != nil {
		return 0, err
	}
	if len(resp.Slices) == 0 {
		return 0, fmt.Errorf("%w: %s", file.ErrNotFound, fileID)
	}

	parts := slices.Clone(resp.Slices)
	slices.SortFunc(parts, func(x, y file.Slice) int { return x.Index - y.Index })

	var written int64
	for _, s := range parts {
		n, err := w.Write(s.Data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write slice %d: %w", s.Index, err)
		}
	}
	return written, nil
}

// split нумерует фрагменты с 1 и проставляет в каждом общее число
func split(r io.Reader, size int) ([]file.Slice, error) {
	var out []file.Slice
	for {
		buf := make([]byte, size)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			out = append(out, file.Slice{Index: len(out) + 1, Data: buf[:n]})
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
	}
	for i := range out {
		out[i].Limit = len(out)
	}
	return out, nil
}
