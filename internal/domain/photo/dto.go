package photo

type PhotoResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	Position  int    `json:"position"`
	CreatedAt string `json:"created_at"`
}
