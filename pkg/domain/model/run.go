package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// StepName identifies a pipeline step
type StepName string

const (
	StepCheckout StepName = "checkout"
	StepSetup    StepName = "setup"
	StepTag      StepName = "tag"
	StepBuild    StepName = "build"
	StepRelease  StepName = "release"
	StepPublish  StepName = "publish"
)

// PipelineSteps is the fixed execution order of a run
var PipelineSteps = []StepName{
	StepCheckout,
	StepSetup,
	StepTag,
	StepBuild,
	StepRelease,
	StepPublish,
}

// StepStatus is the state of one step
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// RunStatus is the overall state of a run
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunID identifies a run
type RunID string

// NewRunID generates a random run ID
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

func (id RunID) String() string {
	return string(id)
}

// StepResult records the outcome of one step
type StepResult struct {
	Name       StepName   `json:"name" firestore:"name"`
	Status     StepStatus `json:"status" firestore:"status"`
	Message    string     `json:"message,omitempty" firestore:"message"`
	StartedAt  time.Time  `json:"started_at,omitzero" firestore:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitzero" firestore:"finished_at"`
}

// Run is the record of one pipeline execution
type Run struct {
	ID         RunID        `json:"id" firestore:"id"`
	Trigger    Trigger      `json:"trigger" firestore:"trigger"`
	Tag        Tag          `json:"tag,omitempty" firestore:"tag"`
	Status     RunStatus    `json:"status" firestore:"status"`
	Steps      []StepResult `json:"steps" firestore:"steps"`
	Release    *Release     `json:"release,omitempty" firestore:"release"`
	Artifacts  []string     `json:"artifacts,omitempty" firestore:"artifacts"`
	Published  []string     `json:"published,omitempty" firestore:"published"`
	Error      string       `json:"error,omitempty" firestore:"error"`
	CreatedAt  time.Time    `json:"created_at" firestore:"created_at"`
	FinishedAt time.Time    `json:"finished_at,omitzero" firestore:"finished_at"`
}

// NewRun creates a queued run with every step pending
func NewRun(trigger Trigger) *Run {
	steps := make([]StepResult, len(PipelineSteps))
	for i, name := range PipelineSteps {
		steps[i] = StepResult{Name: name, Status: StepPending}
	}

	return &Run{
		ID:        NewRunID(),
		Trigger:   trigger,
		Status:    RunQueued,
		Steps:     steps,
		CreatedAt: time.Now().UTC(),
	}
}

// EnsureSteps adds a pending slot for every pipeline step the run lacks, for
// runs not created by NewRun
func (r *Run) EnsureSteps() {
	for _, name := range PipelineSteps {
		if r.Step(name) == nil {
			r.Steps = append(r.Steps, StepResult{Name: name, Status: StepPending})
		}
	}
	if r.Status == "" {
		r.Status = RunQueued
	}
	if r.ID == "" {
		r.ID = NewRunID()
	}
}

// Step returns the result slot of the named step, or nil
func (r *Run) Step(name StepName) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// FailedStep returns the name of the step that failed, or ""
func (r *Run) FailedStep() StepName {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return s.Name
		}
	}
	return ""
}

// Clone returns a deep copy safe to hand to another goroutine
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	c := *r
	c.Steps = slices.Clone(r.Steps)
	c.Artifacts = slices.Clone(r.Artifacts)
	c.Published = slices.Clone(r.Published)
	if r.Release != nil {
		rel := *r.Release
		c.Release = &rel
	}
	return &c
}
