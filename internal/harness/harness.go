package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/binderhq/binderd/internal/bootstrap"
	"github.com/binderhq/binderd/internal/dispatch"
	"github.com/binderhq/binderd/internal/domain"
	"github.com/binderhq/binderd/internal/gateway"
	"github.com/binderhq/binderd/internal/state"
	"github.com/binderhq/binderd/internal/store"
	"github.com/binderhq/binderd/internal/testutil"
)

// Harness base time: 2023-11-14T22:13:20Z in unix milliseconds. Arbitrary
// but fixed; scenarios that care about absolute instants set time on the
// action itself.
const baseTime = int64(1_700_000_000_000)

// timeStep is how far the harness clock advances per dispatch.
const timeStep = int64(1_000)

// Result is the outcome of one scenario run.
type Result struct {
	ScenarioName string

	// Outcomes holds one outcome token per step: "ok", a rejection code,
	// or a flow error token.
	Outcomes []string

	// Failures lists expectation and assertion mismatches. Empty means the
	// scenario passed.
	Failures []string

	// Final is the state after the last step.
	Final state.AppState

	// Seams kept for extra test assertions.
	Gateway   *gateway.SimulatedGateway
	Scheduler *gateway.SimulatedScheduler
	Store     *store.Store
}

// Passed reports whether every expectation and assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario against a freshly seeded in-memory process.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	seed, err := bootstrap.Load()
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := dispatch.New(state.Initial(), st,
		dispatch.WithNow(testutil.SteppingNow(baseTime, timeStep)),
		dispatch.WithLogger(logger),
	)

	ctx := context.Background()
	if err := bootstrap.Apply(ctx, st, d, seed); err != nil {
		return nil, fmt.Errorf("apply seed: %w", err)
	}

	gw := gateway.NewSimulatedGateway()
	push := gateway.NewSimulatedScheduler()
	flows := &gateway.Flows{
		Gateway:    gw,
		Push:       push,
		Dispatcher: d,
		IDs:        domain.NewSequentialGenerator("gen"),
	}

	result := &Result{
		ScenarioName: scenario.Name,
		Gateway:      gw,
		Scheduler:    push,
		Store:        st,
	}

	for i, step := range scenario.Steps {
		outcome := runStep(ctx, st, d, flows, &step)
		result.Outcomes = append(result.Outcomes, outcome)

		expected := step.Expect
		if expected == "" {
			expected = "ok"
		}
		if outcome != expected {
			result.Failures = append(result.Failures,
				fmt.Sprintf("steps[%d]: outcome %q, want %q", i, outcome, expected))
		}
	}

	result.Final = d.State()
	result.Failures = append(result.Failures,
		EvaluateAssertions(&result.Final, scenario.Assertions)...)

	return result, nil
}

// runStep executes one step and folds its error into an outcome token.
func runStep(ctx context.Context, st *store.Store, d *dispatch.Dispatcher, flows *gateway.Flows, step *Step) string {
	var err error
	switch {
	case step.Login != nil:
		_, err = bootstrap.Login(ctx, st, d, step.Login.Email, step.Login.Password)
	case step.Logout:
		_, err = bootstrap.Logout(ctx, d)
	case step.Publish != nil:
		_, err = flows.PublishBinder(ctx, step.Publish.BinderID, step.Publish.PriceCents, step.Publish.ImageURL)
	case step.Purchase != "":
		_, err = flows.PurchaseBundle(ctx, step.Purchase)
	case step.Upgrade != "":
		_, err = flows.UpgradePlan(ctx, domain.UserRole(step.Upgrade), false)
	case step.Do != nil:
		_, err = d.Dispatch(ctx, *step.Do)
	default:
		return "empty_step"
	}
	return outcomeToken(err)
}

func outcomeToken(err error) string {
	if err == nil {
		return "ok"
	}
	var rej *state.RejectionError
	if errors.As(err, &rej) {
		return string(rej.Code)
	}
	switch {
	case errors.Is(err, gateway.ErrNotPermitted):
		return "not_permitted"
	case errors.Is(err, gateway.ErrNotFound):
		return "not_found"
	case errors.Is(err, gateway.ErrAlreadyAcquired):
		return "already_acquired"
	case errors.Is(err, bootstrap.ErrInvalidCredentials):
		return "invalid_credentials"
	}
	return "error: " + err.Error()
}
