package models

// PushPayload represents the subset of the GitHub push webhook payload
// the notification pipeline reads.
type PushPayload struct {
	Ref        string     `json:"ref"`
	After      string     `json:"after"`
	Deleted    bool       `json:"deleted"`
	Compare    string     `json:"compare"`
	Repository Repository `json:"repository"`
	Pusher     Pusher     `json:"pusher"`
	HeadCommit HeadCommit `json:"head_commit"`
}

// Repository represents the repository in the push payload
type Repository struct {
	FullName string `json:"full_name"`
}

// Pusher represents the user who pushed the commits
type Pusher struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HeadCommit represents the head commit of the push
type HeadCommit struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Modified []string `json:"modified"`
}
