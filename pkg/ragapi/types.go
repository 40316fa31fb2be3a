package ragapi

// FilterCriteria narrows which documents are eligible for listing or
// retrieval. All fields optional; zero value means "no filters".
type FilterCriteria struct {
	Country    string `json:"country,omitempty"`
	JobArea    string `json:"job_area,omitempty"`
	SourceType string `json:"source_type,omitempty"`
}

// Empty reports whether no filter value is set.
func (f FilterCriteria) Empty() bool {
	return f.Country == "" && f.JobArea == "" && f.SourceType == ""
}

// SearchResult is one ranked hit from the vector-search endpoint, or a
// bare listing entry (empty snippet) from a metadata query.
type SearchResult struct {
	Filename string `json:"filename"`
	Snippet  string `json:"snippet"`
}

// Message is one turn in the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MetadataOptions enumerates the valid filter values known to the backend.
type MetadataOptions struct {
	Countries   []string `json:"countries"`
	JobAreas    []string `json:"job_areas"`
	SourceTypes []string `json:"source_types"`
}

// IngestFileRequest uploads one local document with its metadata.
type IngestFileRequest struct {
	Filename    string
	Data        []byte
	Country     string
	JobArea     string
	SourceType  string
	TargetGroup string
	Owner       string
}

// IngestURLRequest ingests a single web page.
type IngestURLRequest struct {
	URL         string
	Country     string
	JobArea     string
	SourceType  string
	TargetGroup string
	Owner       string
}

// AnswerRequest carries the full transcript plus the new user turn.
// Filters are present only when the user has applied them via a search;
// Filenames restricts retrieval to an explicit allow-list.
type AnswerRequest struct {
	Messages   []Message `json:"messages"`
	TopK       int       `json:"top_k"`
	Country    string    `json:"country,omitempty"`
	JobArea    string    `json:"job_area,omitempty"`
	SourceType string    `json:"source_type,omitempty"`
	Filenames  []string  `json:"filenames,omitempty"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}
