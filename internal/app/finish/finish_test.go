package finish_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/activator/internal/app/finish"
	"github.com/slok/activator/internal/jobclient"
	"github.com/slok/activator/internal/jobclient/jobclientmock"
	"github.com/slok/activator/internal/model"
	"github.com/slok/activator/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config finish.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: finish.ServiceConfig{
				Repository: &storagemock.MockStepRepository{},
				Client:     &jobclientmock.MockClient{},
			},
		},
		"missing repository should fail": {
			config: finish.ServiceConfig{
				Client: &jobclientmock.MockClient{},
			},
			expErr: true,
		},
		"missing client should fail": {
			config: finish.ServiceConfig{
				Repository: &storagemock.MockStepRepository{},
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := finish.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	finishAction := model.Action{URL: "https://api.test/steps/store/finish", Method: "POST"}
	newStep := func() *model.Step {
		return &model.Step{
			ID:      "store",
			Status:  model.StepStatusCompleted,
			Actions: map[model.ActionName]model.Action{model.ActionFinish: finishAction},
		}
	}

	tests := map[string]struct {
		mock      func(mr *storagemock.MockStepRepository, mc *jobclientmock.MockClient)
		req       finish.Request
		expStatus model.StepStatus
		expErr    error
	}{
		"finishing a step should reset its status": {
			mock: func(mr *storagemock.MockStepRepository, mc *jobclientmock.MockClient) {
				mr.On("GetStep", mock.Anything, "store").Once().Return(newStep(), nil)
				mc.On("Finish", mock.Anything, finishAction).Once().Return(&jobclient.ActionResult{Success: true}, nil)
				mr.On("UpdateStepStatus", mock.Anything, "store", model.StepStatusNotStarted).Once().Return(nil)
			},
			req:       finish.Request{StepID: "store"},
			expStatus: model.StepStatusNotStarted,
		},
		"a step without finish action should fail": {
			mock: func(mr *storagemock.MockStepRepository, mc *jobclientmock.MockClient) {
				mr.On("GetStep", mock.Anything, "store").Once().Return(&model.Step{ID: "store", Status: model.StepStatusCompleted}, nil)
			},
			req:    finish.Request{StepID: "store"},
			expErr: model.ErrActionMissing,
		},
		"a missing step should fail": {
			mock: func(mr *storagemock.MockStepRepository, mc *jobclientmock.MockClient) {
				mr.On("GetStep", mock.Anything, "store").Once().Return(nil, model.ErrNotFound)
			},
			req:    finish.Request{StepID: "store"},
			expErr: model.ErrNotFound,
		},
		"missing step id should fail": {
			mock:   func(mr *storagemock.MockStepRepository, mc *jobclientmock.MockClient) {},
			req:    finish.Request{},
			expErr: model.ErrNotValid,
		},
		"a rejected finish should not update the step": {
			mock: func(mr *storagemock.MockStepRepository, mc *jobclientmock.MockClient) {
				mr.On("GetStep", mock.Anything, "store").Once().Return(newStep(), nil)
				mc.On("Finish", mock.Anything, finishAction).Once().Return(&jobclient.ActionResult{Success: false, Message: "store has pending orders"}, nil)
			},
			req:    finish.Request{StepID: "store"},
			expErr: fmt.Errorf("store has pending orders"),
		},
		"a transport error should not update the step": {
			mock: func(mr *storagemock.MockStepRepository, mc *jobclientmock.MockClient) {
				mr.On("GetStep", mock.Anything, "store").Once().Return(newStep(), nil)
				mc.On("Finish", mock.Anything, finishAction).Once().Return(nil, fmt.Errorf("connection refused"))
			},
			req:    finish.Request{StepID: "store"},
			expErr: fmt.Errorf("connection refused"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mr := &storagemock.MockStepRepository{}
			mc := &jobclientmock.MockClient{}
			test.mock(mr, mc)

			svc, err := finish.NewService(finish.ServiceConfig{Repository: mr, Client: mc})
			require.NoError(err)

			step, err := svc.Run(context.Background(), test.req)

			switch {
			case test.expErr == nil:
				if assert.NoError(err) {
					assert.Equal(test.expStatus, step.Status)
				}
			case test.expErr == model.ErrActionMissing || test.expErr == model.ErrNotFound || test.expErr == model.ErrNotValid:
				assert.ErrorIs(err, test.expErr)
			default:
				if assert.Error(err) {
					assert.Contains(err.Error(), test.expErr.Error())
				}
			}

			mr.AssertExpectations(t)
			mc.AssertExpectations(t)
		})
	}
}
