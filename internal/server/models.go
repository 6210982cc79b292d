package server

type queryRequest struct {
	Question string `json:"question" binding:"required"`
	K        int    `json:"k"`
}

type source struct {
	Document   string  `json:"document"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

type queryResponse struct {
	Answer  string   `json:"answer"`
	Sources []source `json:"sources"`
}

type documentRequest struct {
	ID   string `json:"id" binding:"required"`
	Text string `json:"text" binding:"required"`
}

type documentResponse struct {
	Document string `json:"document"`
	Chunks   int    `json:"chunks"`
}

type errorResponse struct {
	Error string `json:"error"`
}
