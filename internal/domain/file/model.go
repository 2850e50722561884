package file

// Slice один фрагмент файла. Индексы начинаются с 1, Limit заявленное число фрагментов.
type Slice struct {
	Index int    `json:"index"`
	Limit int    `json:"limit,omitempty"`
	Data  []byte `json:"data,omitempty"`
}

// File файл или его часть, передаваемые за один запрос
type File struct {
	ID     string  `json:"id"`
	Slices []Slice `json:"slices,omitempty"`
}

// Record собранный файл в постоянном хранилище
type Record struct {
	ID     string  `json:"id"`
	Limit  int     `json:"limit"`
	Slices []Slice `json:"slices"`
	Digest []byte  `json:"digest,omitempty"`
}

// File представление записи в виде файла
func (r *Record) File() *File {
	return &File{ID: r.ID, Slices: r.Slices}
}

// IngestResult результат приема фрагментов
type IngestResult struct {
	ID           string
	Complete     bool
	NearComplete bool
	Limit        int
	Received     int
	Missing      []int
}
