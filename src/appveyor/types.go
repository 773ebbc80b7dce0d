package appveyor

// BuildStatus is the status of an AppVeyor build.
type BuildStatus string

const (
	BuildQueued     BuildStatus = "queued"
	BuildStarting   BuildStatus = "starting"
	BuildRunning    BuildStatus = "running"
	BuildSuccess    BuildStatus = "success"
	BuildFailed     BuildStatus = "failed"
	BuildCancelling BuildStatus = "cancelling"
	BuildCancelled  BuildStatus = "cancelled"
)

// IsTerminal reports whether the build has finished. Anything else, including
// unknown statuses, counts as running.
func (s BuildStatus) IsTerminal() bool {
	switch s {
	case BuildFailed, BuildCancelled, BuildSuccess:
		return true
	}
	return false
}

// JobStatus is the status of a job within an AppVeyor build.
type JobStatus string

// IsHealthy reports whether the job gives no reason to cancel its build.
func (s JobStatus) IsHealthy() bool {
	switch BuildStatus(s) {
	case BuildSuccess, BuildQueued, BuildRunning:
		return true
	}
	return false
}

// Build is an AppVeyor build. Version identifies the build in the cancel endpoint.
type Build struct {
	BuildID     int64       `json:"buildId"`
	BuildNumber int         `json:"buildNumber"`
	Version     string      `json:"version"`
	Branch      string      `json:"branch"`
	Status      BuildStatus `json:"status"`
	Jobs        []Job       `json:"jobs"`
}

// Job is a unit of work within a build.
type Job struct {
	JobID  string    `json:"jobId"`
	Name   string    `json:"name"`
	Status JobStatus `json:"status"`
}

// History is the response of GET /projects/{account}/{name}/history.
type History struct {
	Builds []Build `json:"builds"`
}

// LastBuild is the response of GET /projects/{account}/{name}/branch/{branch}.
type LastBuild struct {
	Build Build `json:"build"`
}
