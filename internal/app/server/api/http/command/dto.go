package command

// commandInput запрос протокола: версия и имя команды в пути, JSON в теле
type commandInput struct {
	Version string `path:"version" example:"2.0" doc:"Версия протокола: 1.0 или 2.0"`
	Command string `path:"command" example:"sync" doc:"Имя команды, например sync, folderSync, sendFile"`
	RawBody []byte
}

type commandOutput struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}
