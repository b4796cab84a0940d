package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/metacli/setup/internal/domain/detect"
	"github.com/metacli/setup/internal/domain/plan"
	"github.com/metacli/setup/internal/domain/platform"
	"github.com/metacli/setup/internal/domain/sysintegration"
	"github.com/metacli/setup/internal/ports"
)

// State is the controller's run state.
type State string

const (
	// StateIdle is the initial state before any system state is read.
	StateIdle State = "idle"
	// StateDetecting means the current installation is being detected.
	StateDetecting State = "detecting"
	// StatePlanning means the step plan is being built.
	StatePlanning State = "planning"
	// StateExecuting means plan steps are running.
	StateExecuting State = "executing"
	// StateCompleted is the terminal success state.
	StateCompleted State = "completed"
	// StateFailed is the terminal failure state.
	StateFailed State = "failed"
	// StateCancelled is the terminal state after cooperative cancellation.
	StateCancelled State = "cancelled"
)

// Event types for the run state machine.
const (
	EventDetect   = "DETECT"
	EventPlan     = "PLAN"
	EventExecute  = "EXECUTE"
	EventComplete = "COMPLETE"
	EventFail     = "FAIL"
	EventCancel   = "CANCEL"
)

// DefaultStepTimeout bounds a single step. Dependency provisioning applies
// its own tighter per-attempt timeout underneath this one.
const DefaultStepTimeout = 15 * time.Minute

// runContext is the statekit context type. The machine carries only the
// mode; all mutable run data lives in the RunResult.
type runContext struct {
	Mode plan.Mode
}

// Controller runs one lifecycle operation end to end: privilege check,
// detection, planning, sequential step execution with progress and
// cooperative cancellation, and the mode-specific cleanup policy.
//
// A Controller is single-use per Run call and must not be shared across
// concurrent runs against the same install path.
type Controller struct {
	integrator *sysintegration.Integrator
	detector   *detect.Detector
	planner    *plan.Planner
	paths      *platform.Paths
	presenter  Presenter
	logger     ports.Logger

	stepTimeout   time.Duration
	onStateChange func(from, to State)

	// Privilege probes, replaceable in tests.
	isElevated        func() bool
	requiresElevation func(dir string) bool
}

// New creates a Controller over the given collaborators. A nil presenter
// falls back to NopPresenter.
func New(integrator *sysintegration.Integrator, detector *detect.Detector, planner *plan.Planner, paths *platform.Paths, presenter Presenter, logger ports.Logger) *Controller {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	return &Controller{
		integrator:        integrator,
		detector:          detector,
		planner:           planner,
		paths:             paths,
		presenter:         presenter,
		logger:            logger,
		stepTimeout:       DefaultStepTimeout,
		isElevated:        platform.IsElevated,
		requiresElevation: platform.RequiresElevation,
	}
}

// WithStepTimeout sets the per-step deadline.
func (c *Controller) WithStepTimeout(d time.Duration) *Controller {
	c.stepTimeout = d
	return c
}

// WithStateChangeHook registers a callback invoked on every state
// transition, in order.
func (c *Controller) WithStateChangeHook(fn func(from, to State)) *Controller {
	c.onStateChange = fn
	return c
}

// buildMachine constructs the run state machine.
func buildMachine(mode plan.Mode) (*statekit.Interpreter[runContext], error) {
	machine, err := statekit.NewMachine[runContext]("metacli-setup-run").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(runContext{Mode: mode}).
		State(statekit.StateID(StateIdle)).
		On(EventDetect).Target(statekit.StateID(StateDetecting)).
		On(EventFail).Target(statekit.StateID(StateFailed)).Done().
		State(statekit.StateID(StateDetecting)).
		On(EventPlan).Target(statekit.StateID(StatePlanning)).
		On(EventFail).Target(statekit.StateID(StateFailed)).Done().
		State(statekit.StateID(StatePlanning)).
		On(EventExecute).Target(statekit.StateID(StateExecuting)).
		On(EventFail).Target(statekit.StateID(StateFailed)).Done().
		State(statekit.StateID(StateExecuting)).
		On(EventComplete).Target(statekit.StateID(StateCompleted)).
		On(EventFail).Target(statekit.StateID(StateFailed)).
		On(EventCancel).Target(statekit.StateID(StateCancelled)).Done().
		State(statekit.StateID(StateCompleted)).Done().
		State(statekit.StateID(StateFailed)).Done().
		State(statekit.StateID(StateCancelled)).Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// Run executes mode against the machine and returns the run outcome. The
// returned RunResult is populated even on error; the error equals
// RunResult.Err.
func (c *Controller) Run(ctx context.Context, mode plan.Mode, desired detect.Components, opts plan.Options) (*RunResult, error) {
	res := &RunResult{Mode: mode, Started: time.Now()}

	interp, err := buildMachine(mode)
	if err != nil {
		return nil, fmt.Errorf("build state machine: %w", err)
	}
	interp.Start()
	defer interp.Stop()

	fail := func(runErr error) (*RunResult, error) {
		c.send(interp, EventFail)
		res.State = StateFailed
		res.Err = runErr
		res.Ended = time.Now()
		c.presenter.OnComplete(nil, runErr)
		return res, runErr
	}

	// Privilege precondition, before any state is read. Modify only touches
	// user-scoped integration entries and is exempt.
	if mode != plan.ModeModify {
		if dir, ok := c.targetDir(mode, opts); ok && c.requiresElevation(dir) && !c.isElevated() {
			c.logger.Error(ctx, "privilege check failed", ports.F("dir", dir))
			return fail(newPrivilegeError(dir))
		}
	}

	c.send(interp, EventDetect)
	record, err := c.detector.Detect(ctx)
	if err != nil {
		return fail(newDetectionError(err))
	}

	c.send(interp, EventPlan)
	pl, err := c.planner.Plan(mode, record, desired, opts)
	if err != nil {
		return fail(newPlanningError(err))
	}
	c.logger.Info(ctx, "plan built",
		ports.F("mode", string(mode)),
		ports.F("steps", pl.Len()))

	c.send(interp, EventExecute)
	if runErr := c.execute(ctx, pl, res); runErr != nil {
		if errors.Is(runErr, ErrCancelled) {
			c.send(interp, EventCancel)
			res.State = StateCancelled
		} else {
			c.send(interp, EventFail)
			res.State = StateFailed
		}
		res.Err = runErr
		res.Ended = time.Now()
		c.presenter.OnComplete(nil, runErr)
		return res, runErr
	}

	// Fresh snapshot of what the run produced. Nil after uninstall.
	final, err := c.detector.Detect(ctx)
	if err != nil {
		c.logger.Warn(ctx, "post-run detection failed", ports.F("error", err.Error()))
		final = nil
	}

	c.send(interp, EventComplete)
	res.State = StateCompleted
	res.Record = final
	res.Ended = time.Now()
	c.presenter.OnComplete(final, nil)
	return res, nil
}

// targetDir resolves the directory whose scope decides the privilege
// requirement. For Repair and Uninstall the recorded install path is read
// directly from the store; no record means the check is moot because
// planning will reject the mode anyway.
func (c *Controller) targetDir(mode plan.Mode, opts plan.Options) (string, bool) {
	if mode == plan.ModeInstall {
		if opts.InstallDir != "" {
			return opts.InstallDir, true
		}
		return c.paths.DefaultInstallDir(), true
	}
	dir, ok, err := c.integrator.ReadValue(sysintegration.SectionInstall, sysintegration.KeyInstallPath)
	if err != nil || !ok || dir == "" {
		return "", false
	}
	return dir, true
}

// execute runs the plan steps in order. Cancellation is honored only
// between steps. On failure during Install the executed prefix is undone in
// reverse order; other modes keep what already applied.
func (c *Controller) execute(ctx context.Context, pl *plan.Plan, res *RunResult) error {
	steps := pl.Steps()
	var executed []plan.Step

	for i, step := range steps {
		if ctx.Err() != nil || c.presenter.CancelRequested() {
			c.logger.Info(ctx, "cancellation honored", ports.F("before_step", step.ID))
			c.markSkipped(res, steps[i:])
			return newCancelledError()
		}

		c.presenter.OnLog(step.Description)
		c.logger.Info(ctx, "step start", ports.F("step", step.ID))

		start := time.Now()
		err := c.applyStep(ctx, step)
		elapsed := time.Since(start)

		if err != nil {
			c.logger.Error(ctx, "step failed",
				ports.F("step", step.ID),
				ports.F("error", err.Error()))
			c.presenter.OnLog(fmt.Sprintf("%s: failed: %v", step.Description, err))
			res.Steps = append(res.Steps, StepResult{
				ID:          step.ID,
				Description: step.Description,
				Status:      StatusFailed,
				Err:         err,
				Duration:    elapsed,
			})
			c.markSkipped(res, steps[i+1:])

			if pl.Mode() == plan.ModeInstall {
				c.rollback(ctx, executed, res)
			}
			return newStepError(step.ID, step.Description, err)
		}

		res.Steps = append(res.Steps, StepResult{
			ID:          step.ID,
			Description: step.Description,
			Status:      StatusSucceeded,
			Duration:    elapsed,
		})
		executed = append(executed, step)
		c.presenter.OnProgress(pl.PercentAfter(i), step.Description)
	}
	return nil
}

// applyStep runs one step under the per-step deadline. A deadline hit is
// reported as a timeout only when the parent context is still live.
func (c *Controller) applyStep(ctx context.Context, step plan.Step) error {
	stepCtx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	err := step.Apply(stepCtx)
	if err != nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w after %s: %v", ErrStepTimeout, c.stepTimeout, err)
	}
	return err
}

// rollback undoes the executed prefix in reverse order. Undo failures are
// logged and never mask the original step error.
func (c *Controller) rollback(ctx context.Context, executed []plan.Step, res *RunResult) {
	if len(executed) == 0 {
		return
	}
	c.presenter.OnLog("Cleaning up partial installation")

	// The run failed, not the context; cleanup still gets to finish.
	cleanupCtx := context.WithoutCancel(ctx)

	for i := len(executed) - 1; i >= 0; i-- {
		step := executed[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(cleanupCtx); err != nil {
			c.logger.Warn(ctx, "cleanup step failed",
				ports.F("step", step.ID),
				ports.F("error", err.Error()))
			continue
		}
		c.markRolledBack(res, step.ID)
	}
}

func (c *Controller) markSkipped(res *RunResult, remaining []plan.Step) {
	for _, step := range remaining {
		res.Steps = append(res.Steps, StepResult{
			ID:          step.ID,
			Description: step.Description,
			Status:      StatusSkipped,
		})
	}
}

func (c *Controller) markRolledBack(res *RunResult, stepID string) {
	for i := range res.Steps {
		if res.Steps[i].ID == stepID && res.Steps[i].Status == StatusSucceeded {
			res.Steps[i].Status = StatusRolledBack
			return
		}
	}
}

// send dispatches an event and notifies the state-change hook.
func (c *Controller) send(interp *statekit.Interpreter[runContext], event string) {
	from := State(interp.State().Value)
	interp.Send(statekit.Event{Type: statekit.EventType(event)})
	to := State(interp.State().Value)
	if c.onStateChange != nil && from != to {
		c.onStateChange(from, to)
	}
}
