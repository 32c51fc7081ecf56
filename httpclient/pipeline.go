package httpclient

import "context"

// Stage transforms the fulfilled value of the previous stage. Returning an
// error switches the dispatch onto the rejected track for the stages that
// follow.
type Stage func(ctx context.Context, v interface{}) (interface{}, error)

// ErrStage observes the rejected reason of the previous stage. It may
// recover by returning a value and nil error, or re-raise by returning an
// error.
type ErrStage func(ctx context.Context, err error) (interface{}, error)

// Job is one entry of a response pipeline. Exactly one of Run and Rescue is
// set: Run only observes fulfilled states, Rescue only rejected ones.
type Job struct {
	Run    Stage
	Rescue ErrStage
}

// Pipeline is an ordered sequence of post-dispatch transformations, applied
// in registration order once dispatch produces an outcome. A pipeline is
// assembled up front and must not be mutated once dispatch begins.
type Pipeline struct {
	jobs []Job
}

// NewPipeline creates a pipeline whose first stage is initial. A nil initial
// creates an empty pipeline.
func NewPipeline(initial Stage) *Pipeline {
	p := &Pipeline{}
	if initial != nil {
		p.Then(initial)
	}
	return p
}

// Then appends a normal stage and returns the same pipeline.
func (p *Pipeline) Then(s Stage) *Pipeline {
	p.jobs = append(p.jobs, Job{Run: s})
	return p
}

// Catch appends an error-handling stage and returns the same pipeline.
func (p *Pipeline) Catch(s ErrStage) *Pipeline {
	p.jobs = append(p.jobs, Job{Rescue: s})
	return p
}

// Build materializes the ordered job list.
func (p *Pipeline) Build() []Job {
	jobs := make([]Job, len(p.jobs))
	copy(jobs, p.jobs)
	return jobs
}

// runPipeline applies jobs to the dispatch outcome with promise-chain
// routing: a Run stage executes only while the outcome is fulfilled, a
// Rescue stage only while it is rejected, and every stage may flip the track
// for the next one.
func runPipeline(ctx context.Context, jobs []Job, v interface{}, err error) (interface{}, error) {
	for _, j := range jobs {
		switch {
		case j.Run != nil && err == nil:
			v, err = j.Run(ctx, v)
		case j.Rescue != nil && err != nil:
			v, err = j.Rescue(ctx, err)
		}
		if err != nil {
			v = nil
		}
	}
	return v, err
}
