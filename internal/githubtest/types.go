package githubtest

// PutRequest is the body of a contents write. SHA is nil when the client
// left it out.
type PutRequest struct {
	Message string  `json:"message"`
	Content string  `json:"content"`
	Branch  string  `json:"branch"`
	SHA     *string `json:"sha,omitempty"`
}

type contentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding,omitempty"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Content  string `json:"content,omitempty"`
}

type putResponse struct {
	Content contentResponse `json:"content"`
	Commit  struct {
		SHA     string `json:"sha"`
		Message string `json:"message"`
	} `json:"commit"`
}

type errorResponse struct {
	Message string `json:"message"`
}
