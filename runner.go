package contin

import (
	"github.com/soypat/contin/contstate"
)

// Progress is the snapshot a Runner reports after each Step(n) call.
type Progress struct {
	Done              bool
	CurrentStep       int
	MaxSteps          int
	PointsComputed    int
	BifurcationsFound int
	CurrentParam      float64
}

// Runner is a resumable iterator: a plain struct advanced by explicit Step
// calls, with no goroutine or hidden scheduler. Discarding a Runner
// releases everything it holds; there is no teardown call, since the
// caller cancels simply by letting it go out of scope.
type Runner struct {
	driver *ContinuationDriver
	branch *contstate.Branch
	done   bool
	err    error
}

// NewRunner wraps driver and an initial branch (already seeded with its
// first point) into a resumable iterator.
func NewRunner(driver *ContinuationDriver, branch *contstate.Branch) *Runner {
	return &Runner{driver: driver, branch: branch}
}

// Step advances at most n corrected points and returns the resulting
// progress. Safe to call again after Done (returns the same terminal
// progress without further work).
func (r *Runner) Step(n int) Progress {
	if r.done {
		return r.progress()
	}
	for i := 0; i < n; i++ {
		if r.branch.Len() >= r.driver.Settings.MaxSteps {
			r.done = true
			r.err = ErrMaxStepsReached
			r.branch.TerminationReason = ErrMaxStepsReached
			break
		}
		out := r.driver.Step()
		if out.Terminal {
			r.done = true
			r.err = out.Err
			r.branch.TerminationReason = out.Err
			break
		}
		if !out.Accepted {
			continue
		}
		if out.Bifurcation != nil {
			if r.driver.Forward {
				r.branch.InsertBifurcationAfter(r.branch.Len()-1, *out.Bifurcation)
			} else {
				// backward points are prepended, so the located point goes in
				// front of the current first point, ahead of out.Point.
				r.branch.PrependBackward(*out.Bifurcation)
				r.branch.Bifurcations = append(r.branch.Bifurcations, 0)
			}
		}
		if r.driver.Forward {
			r.branch.AppendForward(out.Point)
		} else {
			r.branch.PrependBackward(out.Point)
		}
	}
	return r.progress()
}

// GetProgress returns the current progress without advancing.
func (r *Runner) GetProgress() Progress { return r.progress() }

// GetResult returns the finalized branch once Done. Recoverable
// termination (StepTooSmall, MaxStepsReached, NewtonDiverged) is not
// surfaced as an error here: the caller reads Branch.TerminationReason
// instead. Only SeedInvalid and UnsupportedCurveType, which prevent a
// branch from ever being built, are returned as errors.
func (r *Runner) GetResult() (*contstate.Branch, error) {
	if errorsIsFatal(r.err) {
		return nil, r.err
	}
	return r.branch, nil
}

func (r *Runner) progress() Progress {
	var param float64
	if last, ok := r.branch.Last(); ok {
		param = last.ParamValue
	}
	return Progress{
		Done:              r.done,
		CurrentStep:       r.branch.Len(),
		MaxSteps:          r.driver.Settings.MaxSteps,
		PointsComputed:    r.branch.Len(),
		BifurcationsFound: len(r.branch.Bifurcations),
		CurrentParam:      param,
	}
}
