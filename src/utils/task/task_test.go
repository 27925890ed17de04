package task

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"hemolink/src/utils/config"

	"github.com/stretchr/testify/suite"
)

func TestTaskTestSuite(t *testing.T) {
	suite.Run(t, new(TaskTestSuite))
}

type TaskTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *TaskTestSuite) SetupSuite() {
	s.config = config.Default()
}

func (s *TaskTestSuite) TestLifecycle() {
	task := NewTask(s.config, "test-task")
	task.WithSubtaskFunc(func() error {
		<-task.StopChannel
		return nil
	})
	s.Equal("test-task", task.Name)

	err := task.Start()
	s.NoError(err)

	task.StopWait()
	<-task.CtxRunning.Done()
}

func (s *TaskTestSuite) TestPeriodicSubtaskRuns() {
	var runs atomic.Int32

	task := NewTask(s.config, "periodic").
		WithPeriodicSubtaskFunc(time.Millisecond, func() error {
			runs.Add(1)
			return nil
		})

	err := task.Start()
	s.NoError(err)

	s.Eventually(func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	task.StopWait()
	<-task.CtxRunning.Done()
}

func (s *TaskTestSuite) TestRepeatedSubtaskDrains() {
	var runs atomic.Int32

	task := NewTask(s.config, "repeated").
		WithRepeatedSubtaskFunc(time.Hour, func() (bool, error) {
			// Ask for an immediate re-run until the batch is drained
			return runs.Add(1) < 5, nil
		})

	err := task.Start()
	s.NoError(err)

	s.Eventually(func() bool { return runs.Load() == 5 }, time.Second, 5*time.Millisecond)

	task.StopWait()
}

func (s *TaskTestSuite) TestPeriodicSubtaskStopsOnError() {
	boom := errors.New("boom")
	var runs atomic.Int32

	task := NewTask(s.config, "failing").
		WithPeriodicSubtaskFunc(time.Millisecond, func() error {
			runs.Add(1)
			return boom
		})

	err := task.Start()
	s.NoError(err)

	// The error ends the subtask, so the task winds down on its own
	<-task.CtxRunning.Done()
	s.Equal(int32(1), runs.Load())
}

func (s *TaskTestSuite) TestWorkerPool() {
	var done atomic.Int32

	task := NewTask(s.config, "workers")
	task.WithSubtaskFunc(func() error {
		<-task.StopChannel
		return nil
	}).WithWorkerPool(2, 10)

	err := task.Start()
	s.NoError(err)

	for i := 0; i < 5; i++ {
		task.SubmitToWorker(func() {
			done.Add(1)
		})
	}

	s.Eventually(func() bool { return done.Load() == 5 }, time.Second, 5*time.Millisecond)

	task.StopWait()
}

func (s *TaskTestSuite) TestStopIsIdempotent() {
	task := NewTask(s.config, "stop-twice")

	err := task.Start()
	s.NoError(err)

	task.Stop()
	task.Stop()
	s.True(task.IsStopping.Load())
}
