package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMutator struct {
	calls     []string
	failOn    string
	deleteErr error
	undone    []string
}

func (m *recordingMutator) Create(ctx context.Context, key string) error {
	if key == m.failOn {
		return errors.New("boom")
	}
	m.calls = append(m.calls, "create:"+key)
	return nil
}

func (m *recordingMutator) Delete(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.calls = append(m.calls, "delete:"+key)
	return nil
}

func (m *recordingMutator) UndoCreate(ctx context.Context, key string) error {
	m.undone = append(m.undone, key)
	return nil
}

func TestApplyPlan_CreatesBeforeDeletes(t *testing.T) {
	plan := &Plan{}
	plan.Add(ActionDelete, "old", "")
	plan.Add(ActionPreserve, "keep", "")
	plan.Add(ActionCreate, "new", "")

	m := &recordingMutator{}
	executed, err := ApplyPlan(context.Background(), m, plan, Execute())

	require.NoError(t, err)
	assert.Equal(t, 2, executed)
	assert.Equal(t, []string{"create:new", "delete:old"}, m.calls)
}

func TestApplyPlan_DryRunAndUnconfirmed(t *testing.T) {
	plan := Diff([]string{"a"}, []string{"b"})

	m := &recordingMutator{}
	executed, err := ApplyPlan(context.Background(), m, plan, Options{DryRun: true, Confirmed: true})
	require.NoError(t, err)
	assert.Zero(t, executed)

	executed, err = ApplyPlan(context.Background(), m, plan, Options{})
	require.NoError(t, err)
	assert.Zero(t, executed)
	assert.Empty(t, m.calls)
}

func TestApplyPlan_CreateFailureUndoesAndSkipsDeletes(t *testing.T) {
	plan := Diff([]string{"old"}, []string{"n1", "n2", "n3"})

	m := &recordingMutator{failOn: "n3"}
	executed, err := ApplyPlan(context.Background(), m, plan, Execute())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "n3")
	assert.Zero(t, executed)
	assert.Equal(t, []string{"create:n1", "create:n2"}, m.calls)
	assert.Equal(t, []string{"n2", "n1"}, m.undone)
}

func TestApplyPlan_DeleteError(t *testing.T) {
	plan := Diff([]string{"old"}, []string{"new"})

	m := &recordingMutator{deleteErr: errors.New("locked")}
	executed, err := ApplyPlan(context.Background(), m, plan, Execute())

	require.Error(t, err)
	assert.Equal(t, 1, executed)
}
