package model

// GeneratedPost is one artifact produced by an execution. Status tracks
// the post-hoc review flow (pending → approved/rejected/published).
type GeneratedPost struct {
	PostID    string `json:"post_id"`
	StockCode string `json:"stock_code"`
	KolSerial string `json:"kol_serial"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Status    string `json:"status,omitempty"`
}

// ItemError is a per-stock generation failure inside an otherwise
// completed run.
type ItemError struct {
	StockCode string `json:"stock_code"`
	Error     string `json:"error"`
}

// PostVersion is one alternate rendering of a generated post.
type PostVersion struct {
	VersionID string `json:"version_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// ExecutionResult is the outcome of one execute-now run. Exactly one
// result is live per schedule; the next run supersedes it wholesale.
// Transport failures arrive here as Success=false with Message set, so
// callers handle them and business failures through the same shape.
type ExecutionResult struct {
	Success        bool            `json:"success"`
	SessionID      string          `json:"session_id,omitempty"`
	Message        string          `json:"message,omitempty"`
	GeneratedCount int             `json:"generated_count"`
	FailedCount    int             `json:"failed_count"`
	Posts          []GeneratedPost `json:"posts,omitempty"`
	Errors         []ItemError     `json:"errors,omitempty"`
}

// FindPost returns the held post with the given id, or nil.
func (r *ExecutionResult) FindPost(postID string) *GeneratedPost {
	for i := range r.Posts {
		if r.Posts[i].PostID == postID {
			return &r.Posts[i]
		}
	}
	return nil
}
