package pipeline

import (
	"sync"
	"time"
)

// State is a job's position in the pipeline state machine. Failed is
// terminal and reachable from any stage; there is no resumption, a
// failed job restarts from planning.
type State string

const (
	StatePlanning     State = "planning"
	StateResearching  State = "researching"
	StateWriting      State = "writing"
	StateIllustrating State = "illustrating"
	StateRendering    State = "rendering"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Job tracks one end-to-end generation request.
type Job struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	SlideCount  int       `json:"slide_count"`
	State       State     `json:"state"`
	Path        string    `json:"path,omitempty"`
	FailedStage string    `json:"failed_stage,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Registry is the in-memory job store backing the status endpoint.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]Job)}
}

// Create registers a new job in the planning state.
func (r *Registry) Create(id, topic string, slideCount int) Job {
	now := time.Now()
	job := Job{
		ID:         id,
		Topic:      topic,
		SlideCount: slideCount,
		State:      StatePlanning,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()
	return job
}

// Get returns a snapshot of a job.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

func (r *Registry) advance(id string, state State) {
	r.update(id, func(job *Job) { job.State = state })
}

func (r *Registry) fail(id, stage string, err error) {
	r.update(id, func(job *Job) {
		job.State = StateFailed
		job.FailedStage = stage
		job.Error = err.Error()
	})
}

func (r *Registry) complete(id, path string) {
	r.update(id, func(job *Job) {
		job.State = StateDone
		job.Path = path
	})
}

func (r *Registry) update(id string, fn func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	fn(&job)
	job.UpdatedAt = time.Now()
	r.jobs[id] = job
}
