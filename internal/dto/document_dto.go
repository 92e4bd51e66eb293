package dto

type UploadedFile struct {
	Name string
	Data []byte
}

type UploadResponse struct {
	Uploaded bool `json:"uploaded"`
	Files    int  `json:"files"`
}

type EnqueueResponse struct {
	JobId string `json:"job_id"`
	Files int    `json:"files"`
}

// StagedFile is an upload written to the staging directory for the
// background consumer.
type StagedFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type IngestDocumentsMessage struct {
	JobId string       `json:"job_id"`
	Dir   string       `json:"dir"`
	Files []StagedFile `json:"files"`
}
