package observability_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/observability"
	"github.com/aretw0/asyncresource/pkg/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	boom := errors.New("boom")
	res, actions := resource.New(resource.Config[int, bool]{
		Actions: map[string]resource.Factory[int, bool]{
			"get": func(resource.Bag[int]) resource.ActionFunc[int, bool] {
				return func(_ context.Context, fail bool) (int, error) {
					if fail {
						return 0, boom
					}
					return 1, nil
				}
			},
		},
	}, resource.WithName("users"), resource.WithLifecycleHooks(metrics.Hooks()))

	actions["get"].Dispatch(context.Background(), false)
	res.Wait()
	actions["get"].Dispatch(context.Background(), true)
	res.Wait()

	expected := `
# HELP asyncresource_dispatch_total Total number of dispatched actions
# TYPE asyncresource_dispatch_total counter
asyncresource_dispatch_total{action="get",resource="users"} 2
# HELP asyncresource_rejected_total Total number of actions that were rejected
# TYPE asyncresource_rejected_total counter
asyncresource_rejected_total{action="get",resource="users"} 1
# HELP asyncresource_resolved_total Total number of actions that resolved
# TYPE asyncresource_resolved_total counter
asyncresource_resolved_total{action="get",resource="users"} 1
# HELP asyncresource_transitions_total Total number of applied state transitions by target status
# TYPE asyncresource_transitions_total counter
asyncresource_transitions_total{resource="users",to="rejected"} 1
asyncresource_transitions_total{resource="users",to="rerunning"} 1
asyncresource_transitions_total{resource="users",to="resolved"} 1
asyncresource_transitions_total{resource="users",to="running"} 1
# HELP asyncresource_in_flight Number of dispatched actions that have not settled
# TYPE asyncresource_in_flight gauge
asyncresource_in_flight{resource="users"} 0
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"asyncresource_dispatch_total",
		"asyncresource_resolved_total",
		"asyncresource_rejected_total",
		"asyncresource_transitions_total",
		"asyncresource_in_flight",
	)
	assert.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "asyncresource_action_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestCombine_FansOut(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnDispatch: func(context.Context, *domain.ActionEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnDispatch:   func(context.Context, *domain.ActionEvent) { calls = append(calls, "b") },
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "t") },
	}

	combined := observability.Combine(a, domain.LifecycleHooks{}, b)
	combined.OnDispatch(context.Background(), &domain.ActionEvent{})
	combined.OnTransition(context.Background(), &domain.TransitionEvent{})

	assert.Equal(t, []string{"a", "b", "t"}, calls)
	assert.Nil(t, combined.OnResolve)
}
