package eventlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCleanupJob_Process(t *testing.T) {
	repo := new(MockRepository)
	job := NewCleanupJob(NewService(repo), 90)

	repo.On("CleanupOldEvents", mock.Anything, 90).Return(int64(100), nil)

	assert.NoError(t, job.Process(context.Background()))
	repo.AssertExpectations(t)
}

func TestCleanupJob_ProcessError(t *testing.T) {
	repo := new(MockRepository)
	job := NewCleanupJob(NewService(repo), 7)

	dbErr := errors.New("locked")
	repo.On("CleanupOldEvents", mock.Anything, 7).Return(int64(0), dbErr)

	assert.ErrorIs(t, job.Process(context.Background()), dbErr)
}
