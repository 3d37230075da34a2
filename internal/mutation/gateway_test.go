package mutation

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Success(msg string) {
	m.Called(msg)
}

func (m *mockNotifier) Error(msg string, err error) {
	m.Called(msg, err)
}

var requireName Validator = func(p record.Record, v *Validation) {
	v.Required(p, "name", record.AppName)
}

func TestCreateValidationAbortsNetworkCall(t *testing.T) {
	notifier := &mockNotifier{}
	signal := &listing.RefreshSignal{}
	g := NewGateway(notifier, nil, signal)

	called := false
	_, err := g.Create(context.Background(), Op{
		Entity:     "application",
		Payload:    record.Record{"appName": "   "},
		Validators: []Validator{requireName},
	}, func(context.Context, record.Record) (record.Record, error) {
		called = true
		return nil, nil
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"name": "is required"}, verr.Fields)
	assert.False(t, called)
	assert.Equal(t, int64(0), signal.Value())
	notifier.AssertNotCalled(t, "Success", mock.Anything)
}

func TestCreateSuccessNotifiesAndBumpsRefresh(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("Success", "Application created successfully").Return().Once()
	signal := &listing.RefreshSignal{}
	g := NewGateway(notifier, nil, signal)

	var order []string
	payload := record.Record{"appName": "Billing"}
	res, err := g.Create(context.Background(), Op{
		Entity:     "application",
		Payload:    payload,
		Validators: []Validator{requireName},
		OnSuccess: func(record.Record) {
			order = append(order, "callback")
			assert.Equal(t, int64(0), signal.Value())
		},
	}, func(_ context.Context, p record.Record) (record.Record, error) {
		order = append(order, "call")
		return record.Record{"apP_CODE": "APP_B_1", "apP_NAME": p["appName"]}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "APP_B_1", record.AppCode.String(res))
	assert.Equal(t, []string{"call", "callback"}, order)
	assert.Equal(t, int64(1), signal.Value())
	notifier.AssertExpectations(t)
}

func TestUpdateFailureKeepsPayloadAndDoesNotRefresh(t *testing.T) {
	boom := errors.New("503 service unavailable")
	notifier := &mockNotifier{}
	notifier.On("Error", "Failed to update role", boom).Return().Once()
	signal := &listing.RefreshSignal{}
	g := NewGateway(notifier, nil, signal)

	payload := record.Record{"roleName": "Auditor"}
	_, err := g.Update(context.Background(), Op{Entity: "role", Key: "R1", Payload: payload},
		func(context.Context, string, record.Record) (record.Record, error) {
			return nil, boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, record.Record{"roleName": "Auditor"}, payload)
	assert.Equal(t, int64(0), signal.Value())
	notifier.AssertExpectations(t)
}

func TestUpdateRequiresKey(t *testing.T) {
	g := NewGateway(nil, nil, nil)
	_, err := g.Update(context.Background(), Op{Entity: "role"},
		func(context.Context, string, record.Record) (record.Record, error) {
			t.Fatal("backend must not be called")
			return nil, nil
		})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	tests := []struct {
		name       string
		confirm    ConfirmFunc
		wantCalled bool
		wantErr    error
	}{
		{
			name:    "declined",
			confirm: func(context.Context, string) (bool, error) { return false, nil },
			wantErr: ErrCancelled,
		},
		{
			name: "confirmation failed",
			confirm: func(context.Context, string) (bool, error) {
				return false, context.Canceled
			},
			wantErr: context.Canceled,
		},
		{
			name:       "accepted",
			confirm:    func(context.Context, string) (bool, error) { return true, nil },
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &mockNotifier{}
			notifier.On("Success", mock.Anything).Return().Maybe()
			signal := &listing.RefreshSignal{}
			g := NewGateway(notifier, nil, signal)

			called := false
			err := g.Delete(context.Background(), Op{Entity: "role", Key: "R1"}, "role R1", tt.confirm,
				func(context.Context, string) error {
					called = true
					return nil
				})

			assert.Equal(t, tt.wantCalled, called)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, int64(0), signal.Value())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), signal.Value())
		})
	}
}

func TestDeleteInFlightIsPerKey(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("Success", mock.Anything).Return()
	g := NewGateway(notifier, nil, nil)
	accept := ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = g.Delete(context.Background(), Op{Entity: "role", Key: "R1"}, "role R1", accept,
			func(context.Context, string) error {
				close(started)
				<-release
				return nil
			})
	}()
	<-started

	assert.True(t, g.InFlight().Busy("R1"))
	assert.False(t, g.InFlight().Busy("R2"))
	assert.Equal(t, []string{"R1"}, g.InFlight().Keys())

	err := g.Delete(context.Background(), Op{Entity: "role", Key: "R1"}, "role R1", accept,
		func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, g.Delete(context.Background(), Op{Entity: "role", Key: "R2"}, "role R2", accept,
		func(context.Context, string) error { return nil }))

	close(release)
	wg.Wait()
	assert.False(t, g.InFlight().Busy("R1"))
}

func TestValidation(t *testing.T) {
	codePattern := regexp.MustCompile(`^APP_[A-Z0-9]+_\d+$`)
	validator := func(p record.Record, v *Validation) {
		v.Required(p, "code", record.AppCode)
		v.Match(p, "code", record.AppCode, codePattern, "must end with a numeric suffix")
		v.Required(p, "functions", record.FuncCodes)
	}

	err := Validate(record.Record{"appCode": "APP_X_ab", "funcCodes": []any{}}, validator)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"code", "functions"}, verr.FieldNames())
	assert.Equal(t, "must end with a numeric suffix", verr.Fields["code"])
	assert.Contains(t, verr.Error(), "functions: requires at least one value")

	assert.NoError(t, Validate(record.Record{"appCode": "APP_X_12", "funcCodes": []any{"F1"}}, validator))
}
