package maps

import (
	"context"
	"errors"
	"testing"

	"hllrotate/internal/gateway/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) AddToRotation(ctx context.Context, names []string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func (m *mockTransport) RemoveFromRotation(ctx context.Context, names []string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func rejection(reason command.RejectedReason) error {
	return &command.TransportError{
		Kind:      command.KindRejected,
		Transport: "crcon",
		Op:        "test",
		Reason:    reason,
	}
}

func TestAddCanonicalizesNames(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))

	tr.On("AddToRotation", mock.Anything, []string{"foy_warfare", "carentan_warfare"}).Return(nil).Once()

	err := m.Add(context.Background(), []string{"Foy Warfare", "carentan"}, nil)
	require.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestAddRetriesWithDisplayNames(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))

	tr.On("AddToRotation", mock.Anything, []string{"foy_warfare"}).Return(rejection(command.ReasonInvalidName)).Once()
	tr.On("AddToRotation", mock.Anything, []string{"Foy Warfare"}).Return(nil).Once()

	err := m.Add(context.Background(), []string{"foy"}, nil)
	require.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestAddBothVariantsRejected(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))

	tr.On("AddToRotation", mock.Anything, mock.Anything).Return(rejection(command.ReasonInvalidName)).Twice()

	err := m.Add(context.Background(), []string{"foy"}, nil)
	require.Error(t, err)
	te, ok := command.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, command.ReasonInvalidName, te.Reason)
	tr.AssertExpectations(t)
}

func TestAddNoOpRejectionSucceeds(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))

	tr.On("AddToRotation", mock.Anything, mock.Anything).Return(rejection(command.ReasonNotApplicable)).Once()

	err := m.Add(context.Background(), []string{"foy_warfare"}, nil)
	assert.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestAddNetworkErrorDoesNotRetryVariants(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))

	netErr := &command.TransportError{Kind: command.KindNetwork, Transport: "crcon", Op: "add", Err: errors.New("refused")}
	tr.On("AddToRotation", mock.Anything, mock.Anything).Return(netErr).Once()

	err := m.Add(context.Background(), []string{"foy_warfare"}, nil)
	require.Error(t, err)
	tr.AssertNumberOfCalls(t, "AddToRotation", 1)
}

func TestAddEmptyRequestIsNoCall(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))
	require.NoError(t, m.Add(context.Background(), nil, nil))
	tr.AssertNotCalled(t, "AddToRotation")
}

func TestRemoveRetriesWithReportedNames(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))

	// The live snapshot maps the reported spelling to a canonical id the
	// server then refuses; the retry resubmits what the server reported.
	live := []command.MapEntry{{ID: "foy_offensive_ger", PrettyName: "FOY OFFENSIVE"}}
	tr.On("RemoveFromRotation", mock.Anything, []string{"foy_offensive_ger"}).Return(rejection(command.ReasonInvalidName)).Once()
	tr.On("RemoveFromRotation", mock.Anything, []string{"FOY OFFENSIVE"}).Return(nil).Once()

	err := m.Remove(context.Background(), []string{"FOY OFFENSIVE"}, live)
	require.NoError(t, err)
	tr.AssertExpectations(t)
}

func TestRemoveSkipsIdenticalVariant(t *testing.T) {
	tr := &mockTransport{}
	m := NewMutator(tr, NewCanonicalizer(nil))

	// Canonical form equals the requested form: no second attempt exists.
	tr.On("RemoveFromRotation", mock.Anything, []string{"mystery_map"}).Return(rejection(command.ReasonInvalidName)).Once()

	err := m.Remove(context.Background(), []string{"mystery_map"}, nil)
	require.Error(t, err)
	tr.AssertNumberOfCalls(t, "RemoveFromRotation", 1)
}
