package travis

// BuildState is the state of a Travis build (API v2).
type BuildState string

const (
	BuildCreated  BuildState = "created"
	BuildReceived BuildState = "received"
	BuildQueued   BuildState = "queued"
	BuildStarted  BuildState = "started"
	BuildPassed   BuildState = "passed"
	BuildFailed   BuildState = "failed"
	BuildErrored  BuildState = "errored"
	BuildCanceled BuildState = "canceled"
)

// IsTerminal reports whether the build has finished. Unknown states count as running.
func (s BuildState) IsTerminal() bool {
	switch s {
	case BuildPassed, BuildFailed, BuildCanceled, BuildErrored:
		return true
	}
	return false
}

// JobState is the state of a single Travis job. Jobs share the build vocabulary.
type JobState string

// IsFailure reports whether the job already failed, which dooms its build.
func (s JobState) IsFailure() bool {
	switch BuildState(s) {
	case BuildFailed, BuildErrored, BuildCanceled:
		return true
	}
	return false
}

// Build is a Travis build as returned by the build list and build detail endpoints.
// The list endpoint does not carry the branch; it must be joined to a Commit.
type Build struct {
	ID       int64      `json:"id"`
	Number   string     `json:"number"`
	State    BuildState `json:"state"`
	CommitID int64      `json:"commit_id"`
}

// Commit carries the branch a build belongs to.
type Commit struct {
	ID     int64  `json:"id"`
	Branch string `json:"branch"`
	SHA    string `json:"sha"`
}

// Job is a unit of work within a build.
type Job struct {
	ID     int64    `json:"id"`
	Number string   `json:"number"`
	State  JobState `json:"state"`
}

// BuildList is the response of GET /repos/{owner}/{name}/builds.
type BuildList struct {
	Builds  []Build  `json:"builds"`
	Commits []Commit `json:"commits"`
}

// BuildDetail is the response of GET /builds/{id}.
type BuildDetail struct {
	Build Build `json:"build"`
	Jobs  []Job `json:"jobs"`
}
