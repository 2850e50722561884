package notice

import "context"

// Sender доставляет уведомление подключенным устройствам пользователя
type Sender interface {
	Send(ctx context.Context, username string, n *Notice) error
}

// SenderFunc адаптер функции к Sender
type SenderFunc func(ctx context.Context, username string, n *Notice) error

func (f SenderFunc) Send(ctx context.Context, username string, n *Notice) error {
	return f(ctx, username, n)
}

// Discard отбрасывает уведомления
var Discard Sender = SenderFunc(func(context.Context, string, *Notice) error { return nil })
