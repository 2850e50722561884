package health

const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"
)

type Input struct{}

type Output struct {
	Body Response
}

// Response состояние сервера. Time нужен клиентам для сверки с временем сообщений.
type Response struct {
	Status  string `json:"status" enum:"OK,DEGRADED" doc:"Состояние сервиса"`
	Storage string `json:"storage" example:"pebble" doc:"Драйвер хранилища"`
	Time    int64  `json:"time" doc:"Время сервера, UTC секунды"`
	Error   string `json:"error,omitempty" doc:"Ошибка проверки хранилища"`
}
